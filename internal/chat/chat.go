// Package chat answers a single user message: correct it, look it up, and
// fall back to recording it when nothing matches.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"qabot/internal/config"
	"qabot/internal/fallback"
	"qabot/internal/models"
	"qabot/internal/qa"
	"qabot/internal/speller"
)

// Lookuper finds the stored record closest to a query.
type Lookuper interface {
	Lookup(query string) (models.QARecord, qa.Match, error)
}

// Observer is notified of every answered call. Implementations must not block.
type Observer interface {
	ObserveAnswer(outcome string, score float64)
	ObserveRecordError()
}

// Options configures a Bot.
type Options struct {
	FallbackMessage string
	Observer        Observer
}

// Reply is the result of one Answer call.
type Reply struct {
	Text      string
	Outcome   string
	Corrected string
	Question  string  // Matched stored question, empty on fallback
	Score     float64 // Match similarity, zero on fallback
}

// Bot is the chat orchestrator. It holds no per-conversation state and is
// safe for concurrent use as long as its collaborators are.
type Bot struct {
	store     Lookuper
	corrector speller.Corrector
	recorder  fallback.Recorder
	fallback  string
	observer  Observer
}

// New creates a Bot. A nil corrector disables spell correction.
func New(store Lookuper, corrector speller.Corrector, recorder fallback.Recorder, opts Options) *Bot {
	if corrector == nil {
		corrector = speller.Nop{}
	}
	if opts.FallbackMessage == "" {
		opts.FallbackMessage = config.DefaultFallbackMessage
	}
	return &Bot{
		store:     store,
		corrector: corrector,
		recorder:  recorder,
		fallback:  opts.FallbackMessage,
		observer:  opts.Observer,
	}
}

// FallbackMessage returns the text sent when no answer is found.
func (b *Bot) FallbackMessage() string {
	return b.fallback
}

// Answer produces a reply for raw. It always returns a reply: lookup misses,
// lookup failures and recorder failures all end in the fallback text.
func (b *Bot) Answer(ctx context.Context, raw string) Reply {
	reply, err := b.lookup(raw)
	if err != nil {
		if !errors.Is(err, qa.ErrNoMatch) {
			slog.Error("question lookup failed", "error", err)
			reply.Outcome = models.OutcomeError
		}
		reply.Text = b.fallback
		b.record(ctx, raw)
	}
	b.observe(reply)
	return reply
}

func (b *Bot) lookup(raw string) (reply Reply, err error) {
	reply.Outcome = models.OutcomeUnanswered
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during lookup: %v", r)
		}
	}()

	reply.Corrected = b.corrector.Correct(raw)
	rec, match, err := b.store.Lookup(reply.Corrected)
	if err != nil {
		return reply, err
	}

	reply.Text = rec.Answer
	reply.Outcome = models.OutcomeAnswered
	reply.Question = rec.Question
	reply.Score = match.Score
	return reply, nil
}

// record stores the raw message for later review. Failures are logged only:
// the user still gets the fallback text.
func (b *Bot) record(ctx context.Context, raw string) {
	if b.recorder == nil {
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic during record: %v", r)
			}
		}()
		err = b.recorder.Record(ctx, raw)
	}()
	if err == nil {
		return
	}

	slog.Error("failed to record unanswered question", "error", err)
	if b.observer != nil {
		b.observer.ObserveRecordError()
	}
}

func (b *Bot) observe(reply Reply) {
	if b.observer != nil {
		b.observer.ObserveAnswer(reply.Outcome, reply.Score)
	}
}
