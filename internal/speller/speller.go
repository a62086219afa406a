// Package speller corrects misspelled words in user messages before lookup.
package speller

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sajari/fuzzy"
)

// Corrector turns a raw message into its corrected form.
// Implementations must be safe for concurrent use.
type Corrector interface {
	Correct(message string) string
}

// Nop returns messages unchanged.
type Nop struct{}

// Correct implements Corrector.
func (Nop) Correct(message string) string { return message }

// DefaultMaxWordLength caps the words handed to the model. Candidate
// generation grows with the square of the word length.
const DefaultMaxWordLength = 32

// Options configures a Speller.
type Options struct {
	MinWordLength int // Shorter words are left alone
	MaxWordLength int // Longer words are left alone; zero means DefaultMaxWordLength
	Depth         int // Maximum edit distance searched
}

var wordPattern = regexp.MustCompile(`[\p{L}'’]+`)

// Speller is a dictionary-trained Corrector.
type Speller struct {
	model   *fuzzy.Model
	known   map[string]struct{}
	minWord int
	maxWord int
}

// New trains a Speller on the given words.
func New(words []string, opts Options) *Speller {
	if opts.MinWordLength <= 0 {
		opts.MinWordLength = 3
	}
	if opts.Depth <= 0 {
		opts.Depth = 2
	}
	if opts.MaxWordLength <= 0 {
		opts.MaxWordLength = DefaultMaxWordLength
	}

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(opts.Depth)
	model.SetUseAutocomplete(false)

	s := &Speller{
		model:   model,
		known:   make(map[string]struct{}, len(words)),
		minWord: opts.MinWordLength,
	}

	var training []string
	longest := 0
	for _, w := range words {
		k := key(w)
		if k == "" {
			continue
		}
		s.known[k] = struct{}{}
		training = append(training, k)
		longest = max(longest, utf8.RuneCountInString(k))
	}
	model.Train(training)

	// Nothing longer than this is within Depth edits of a known word.
	s.maxWord = min(opts.MaxWordLength, longest+opts.Depth)
	return s
}

// Correct replaces each unknown word with the closest known one.
// Everything that is not a word, and words with no suggestion, are kept as is.
func (s *Speller) Correct(message string) string {
	return wordPattern.ReplaceAllStringFunc(message, func(word string) string {
		k := key(word)
		if n := utf8.RuneCountInString(k); n < s.minWord || n > s.maxWord {
			return word
		}
		if _, ok := s.known[k]; ok {
			return word
		}
		suggestion := s.model.SpellCheck(k)
		if suggestion == "" || suggestion == k {
			return word
		}
		return suggestion
	})
}

// Known reports how many distinct words the speller was trained on.
func (s *Speller) Known() int {
	return len(s.known)
}

func key(word string) string {
	word = strings.ToLower(word)
	return strings.NewReplacer("'", "", "’", "").Replace(word)
}

// ReadWords extracts every word from r, in order.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		words = append(words, wordPattern.FindAllString(sc.Text(), -1)...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadDictionary reads extra training words from a file. The file may hold
// one word per line or free text.
func LoadDictionary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return words, nil
}
