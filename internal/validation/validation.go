package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxMessageLength caps incoming messages, in runes.
const DefaultMaxMessageLength = 1000

// SanitizeMessage trims surrounding whitespace, replaces invalid UTF-8
// sequences and drops control characters other than tab and line breaks.
// Postgres TEXT cannot hold NUL, so an unsanitized message could not be logged.
func SanitizeMessage(message string) string {
	if !utf8.ValidString(message) {
		message = strings.ToValidUTF8(message, "�")
	}
	message = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, message)
	return strings.TrimSpace(message)
}

// ValidateMessage checks that a message is within the allowed length.
// Empty messages are valid: they simply never match a stored question.
func ValidateMessage(message string, maxLen int) (bool, string) {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLength
	}
	if utf8.RuneCountInString(message) > maxLen {
		return false, "Message is too long"
	}
	return true, ""
}

// NormalizeQuestion maps a question to its matching key so lookups ignore
// case, width, punctuation and spacing differences.
func NormalizeQuestion(question string) string {
	s := norm.NFKC.String(question)
	s = cases.Fold().String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '’':
			return -1
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsControl(r):
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
