package models

// Answer outcome constants
const (
	OutcomeAnswered   = "answered"
	OutcomeUnanswered = "unanswered"
	OutcomeError      = "error"
)

// IsValidOutcome reports whether s is one of the known outcomes.
func IsValidOutcome(s string) bool {
	switch s {
	case OutcomeAnswered, OutcomeUnanswered, OutcomeError:
		return true
	}
	return false
}
