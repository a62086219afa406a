// Package qa holds the read-only question/answer store and its data sources.
package qa

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"qabot/internal/models"
	"qabot/internal/validation"
)

// DefaultThreshold is the minimum similarity for a fuzzy match.
const DefaultThreshold = 0.85

// Source yields the question/answer pairs a Store is built from.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]models.QARecord, error)
}

// Options controls matching.
type Options struct {
	// Threshold is the minimum similarity (0..1] accepted by fuzzy matching.
	// Zero means DefaultThreshold; values >= 1 allow exact matches only.
	Threshold float64
}

// Match describes how a lookup was satisfied.
type Match struct {
	Index int     // Position of the record in source order
	Score float64 // 1 for exact matches
	Exact bool
}

type entry struct {
	record models.QARecord
	key    string
	runes  int
}

// Store is an immutable, in-memory set of QA records.
// It is safe for concurrent use.
type Store struct {
	entries   []entry
	exact     map[string]int
	threshold float64
	skipped   int
}

// Load reads every record from src and builds a Store.
// Any failure is reported as a *DataSourceError.
func Load(ctx context.Context, src Source, opts Options) (*Store, error) {
	records, err := src.Records(ctx)
	if err != nil {
		return nil, &DataSourceError{Source: src.Name(), Err: err}
	}

	s, err := New(records, opts)
	if err != nil {
		return nil, &DataSourceError{Source: src.Name(), Err: err}
	}

	slog.Info("qa store loaded", "source", src.Name(), "records", s.Len(), "skipped", s.Skipped())
	return s, nil
}

// New builds a Store from records already in memory. Records whose question
// is blank after normalization are skipped; ErrNoRecords is returned when
// nothing is left.
func New(records []models.QARecord, opts Options) (*Store, error) {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	s := &Store{
		entries:   make([]entry, 0, len(records)),
		exact:     make(map[string]int, len(records)),
		threshold: threshold,
	}

	for _, r := range records {
		key := validation.NormalizeQuestion(r.Question)
		if key == "" {
			s.skipped++
			continue
		}
		if _, dup := s.exact[key]; !dup {
			s.exact[key] = len(s.entries)
		}
		s.entries = append(s.entries, entry{
			record: r,
			key:    key,
			runes:  utf8.RuneCountInString(key),
		})
	}

	if len(s.entries) == 0 {
		return nil, ErrNoRecords
	}
	return s, nil
}

// Lookup returns the record whose question best matches query.
// Exact matches on the normalized question win; otherwise the most similar
// question at or above the threshold is used, earliest record first on ties.
func (s *Store) Lookup(query string) (models.QARecord, Match, error) {
	key := validation.NormalizeQuestion(query)
	if key == "" {
		return models.QARecord{}, Match{}, ErrNoMatch
	}

	if i, ok := s.exact[key]; ok {
		return s.entries[i].record, Match{Index: i, Score: 1, Exact: true}, nil
	}

	if s.threshold >= 1 {
		return models.QARecord{}, Match{}, ErrNoMatch
	}

	qLen := utf8.RuneCountInString(key)
	best, bestScore := -1, 0.0
	for i, e := range s.entries {
		longest := max(qLen, e.runes)
		// Length difference alone bounds the achievable similarity.
		if 1-float64(abs(qLen-e.runes))/float64(longest) < s.threshold {
			continue
		}
		score := 1 - float64(levenshtein.ComputeDistance(key, e.key))/float64(longest)
		if score >= s.threshold && score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return models.QARecord{}, Match{}, ErrNoMatch
	}
	return s.entries[best].record, Match{Index: best, Score: bestScore}, nil
}

// Len returns the number of usable records.
func (s *Store) Len() int {
	return len(s.entries)
}

// Skipped returns how many source records were dropped for a blank question.
func (s *Store) Skipped() int {
	return s.skipped
}

// Threshold returns the effective fuzzy-match threshold.
func (s *Store) Threshold() float64 {
	return s.threshold
}

// Vocabulary returns the distinct words used in questions and answers,
// in first-seen order.
func (s *Store) Vocabulary() []string {
	seen := make(map[string]struct{})
	var words []string
	add := func(text string) {
		for _, w := range strings.Fields(validation.NormalizeQuestion(text)) {
			if !isWord(w) {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
	}
	for _, e := range s.entries {
		add(e.record.Question)
		add(e.record.Answer)
	}
	return words
}

func isWord(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
