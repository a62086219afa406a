package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"qabot/internal/config"
	"qabot/internal/fallback"
	"qabot/internal/models"
	"qabot/internal/qa"
	"qabot/internal/speller"
)

var records = []models.QARecord{
	{Question: "What are your opening hours?", Answer: "We are open 9am to 5pm, Monday to Friday."},
	{Question: "Do you ship abroad?", Answer: "Yes, we ship to most countries."},
	{Question: "What is your return policy?", Answer: "Returns are accepted within 30 days."},
}

type memRecorder struct {
	mu  sync.Mutex
	got []string
	err error
}

func (m *memRecorder) Record(_ context.Context, q string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.got = append(m.got, q)
	return nil
}

func (m *memRecorder) entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.got...)
}

type countingObserver struct {
	mu          sync.Mutex
	outcomes    map[string]int
	writeErrors int
}

func (o *countingObserver) ObserveAnswer(outcome string, _ float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

func (o *countingObserver) ObserveRecordError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writeErrors++
}

type failingStore struct{ err error }

func (s failingStore) Lookup(string) (models.QARecord, qa.Match, error) {
	return models.QARecord{}, qa.Match{}, s.err
}

type panickingStore struct{}

func (panickingStore) Lookup(string) (models.QARecord, qa.Match, error) {
	panic("index out of range")
}

func newStore(t *testing.T) *qa.Store {
	t.Helper()
	store, err := qa.New(records, qa.Options{Threshold: 1})
	if err != nil {
		t.Fatalf("qa.New() error = %v", err)
	}
	return store
}

func TestBot_Answer(t *testing.T) {
	store := newStore(t)
	sp := speller.New(store.Vocabulary(), speller.Options{})

	longWord := strings.Repeat("ab", 500)
	longSentence := strings.Repeat("do you sell hats ", 60)[:1000]

	tests := []struct {
		name        string
		message     string
		wantText    string
		wantOutcome string
		wantLogged  []string
	}{
		{
			name:        "exact question",
			message:     "What are your opening hours?",
			wantText:    records[0].Answer,
			wantOutcome: models.OutcomeAnswered,
		},
		{
			name:        "case and punctuation differ",
			message:     "do you ship abroad",
			wantText:    records[1].Answer,
			wantOutcome: models.OutcomeAnswered,
		},
		{
			name:        "typo corrected",
			message:     "What are your opening hourz?",
			wantText:    records[0].Answer,
			wantOutcome: models.OutcomeAnswered,
		},
		{
			name:        "unknown question",
			message:     "Do you sell hats?",
			wantText:    config.DefaultFallbackMessage,
			wantOutcome: models.OutcomeUnanswered,
			wantLogged:  []string{"Do you sell hats?"},
		},
		{
			name:        "empty message",
			message:     "",
			wantText:    config.DefaultFallbackMessage,
			wantOutcome: models.OutcomeUnanswered,
			wantLogged:  []string{""},
		},
		{
			name:        "raw message logged, not the corrected one",
			message:     "Do you sell hourz?",
			wantText:    config.DefaultFallbackMessage,
			wantOutcome: models.OutcomeUnanswered,
			wantLogged:  []string{"Do you sell hourz?"},
		},
		{
			name:        "1000 rune single word",
			message:     longWord,
			wantText:    config.DefaultFallbackMessage,
			wantOutcome: models.OutcomeUnanswered,
			wantLogged:  []string{longWord},
		},
		{
			name:        "1000 rune sentence",
			message:     longSentence,
			wantText:    config.DefaultFallbackMessage,
			wantOutcome: models.OutcomeUnanswered,
			wantLogged:  []string{longSentence},
		},
		{
			name:        "non-english question",
			message:     "¿Venden sombreros?",
			wantText:    config.DefaultFallbackMessage,
			wantOutcome: models.OutcomeUnanswered,
			wantLogged:  []string{"¿Venden sombreros?"},
		},
		{
			name:        "invalid utf-8",
			message:     "a\xffb",
			wantText:    config.DefaultFallbackMessage,
			wantOutcome: models.OutcomeUnanswered,
			wantLogged:  []string{"a\xffb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			bot := New(store, sp, rec, Options{})

			reply := bot.Answer(context.Background(), tt.message)
			if reply.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", reply.Text, tt.wantText)
			}
			if reply.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", reply.Outcome, tt.wantOutcome)
			}
			if diff := cmp.Diff(tt.wantLogged, rec.entries()); diff != "" {
				t.Errorf("logged mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBot_CorrectedReported(t *testing.T) {
	store := newStore(t)
	bot := New(store, speller.New(store.Vocabulary(), speller.Options{}), &memRecorder{}, Options{})

	reply := bot.Answer(context.Background(), "What are your opening hourz?")
	if reply.Corrected != "What are your opening hours?" {
		t.Errorf("Corrected = %q", reply.Corrected)
	}
	if reply.Question != records[0].Question || reply.Score != 1 {
		t.Errorf("Question = %q, Score = %v", reply.Question, reply.Score)
	}
}

func TestBot_CustomFallbackMessage(t *testing.T) {
	bot := New(newStore(t), nil, &memRecorder{}, Options{FallbackMessage: "Sorry, no idea."})
	if got := bot.Answer(context.Background(), "Do you sell hats?").Text; got != "Sorry, no idea." {
		t.Errorf("Text = %q", got)
	}
	if got := bot.FallbackMessage(); got != "Sorry, no idea." {
		t.Errorf("FallbackMessage() = %q", got)
	}
}

func TestBot_RepeatedMissesAllLogged(t *testing.T) {
	rec := &memRecorder{}
	bot := New(newStore(t), nil, rec, Options{})

	for i := 0; i < 3; i++ {
		bot.Answer(context.Background(), "Do you sell hats?")
	}
	if got := len(rec.entries()); got != 3 {
		t.Errorf("logged %d entries, want 3", got)
	}
}

func TestBot_FailuresStillFallBack(t *testing.T) {
	tests := []struct {
		name        string
		store       Lookuper
		recorder    *memRecorder
		wantOutcome string
		wantLogged  int
		wantWriteEr int
	}{
		{
			name:        "lookup error",
			store:       failingStore{err: errors.New("index corrupted")},
			recorder:    &memRecorder{},
			wantOutcome: models.OutcomeError,
			wantLogged:  1,
		},
		{
			name:        "lookup panic",
			store:       panickingStore{},
			recorder:    &memRecorder{},
			wantOutcome: models.OutcomeError,
			wantLogged:  1,
		},
		{
			name:        "recorder error",
			store:       failingStore{err: qa.ErrNoMatch},
			recorder:    &memRecorder{err: &fallback.LogWriteError{Sink: "file", Err: errors.New("disk full")}},
			wantOutcome: models.OutcomeUnanswered,
			wantWriteEr: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &countingObserver{}
			bot := New(tt.store, nil, tt.recorder, Options{Observer: obs})

			reply := bot.Answer(context.Background(), "Do you sell hats?")
			if reply.Text != config.DefaultFallbackMessage {
				t.Errorf("Text = %q, want fallback", reply.Text)
			}
			if reply.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", reply.Outcome, tt.wantOutcome)
			}
			if got := len(tt.recorder.entries()); got != tt.wantLogged {
				t.Errorf("logged %d entries, want %d", got, tt.wantLogged)
			}
			if obs.writeErrors != tt.wantWriteEr {
				t.Errorf("write errors = %d, want %d", obs.writeErrors, tt.wantWriteEr)
			}
			if obs.outcomes[tt.wantOutcome] != 1 {
				t.Errorf("observed outcomes = %v", obs.outcomes)
			}
		})
	}
}

func TestBot_NilRecorder(t *testing.T) {
	bot := New(newStore(t), nil, nil, Options{})
	if got := bot.Answer(context.Background(), "Do you sell hats?").Outcome; got != models.OutcomeUnanswered {
		t.Errorf("Outcome = %q", got)
	}
}

func TestBot_ConcurrentMissesToFile(t *testing.T) {
	logger, err := fallback.OpenFile(filepath.Join(t.TempDir(), "bank.csv"))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer logger.Close()

	rec := &memRecorder{}
	bot := New(newStore(t), nil, fallback.Observe(logger, func(q string, _ time.Time) {
		rec.Record(context.Background(), q)
	}), Options{})

	const n = 50
	want := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		want[i] = fmt.Sprintf("zz unknown question %02d", i)
		wg.Add(1)
		go func(msg string) {
			defer wg.Done()
			if reply := bot.Answer(context.Background(), msg); reply.Text != config.DefaultFallbackMessage {
				t.Errorf("Text = %q", reply.Text)
			}
		}(want[i])
	}
	wg.Wait()

	got := rec.entries()
	sort.Strings(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recorded mismatch (-want +got):\n%s", diff)
	}
}
