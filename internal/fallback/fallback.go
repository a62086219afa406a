// Package fallback records questions the bot could not answer so a person
// can follow up on them later.
package fallback

import (
	"context"
	"log/slog"
	"time"
)

// Recorder appends an unanswered question to durable storage.
type Recorder interface {
	Record(ctx context.Context, question string) error
}

// LogWriteError reports that an unanswered question could not be stored.
type LogWriteError struct {
	Sink string
	Err  error
}

func (e *LogWriteError) Error() string {
	return "fallback log " + e.Sink + ": " + e.Err.Error()
}

func (e *LogWriteError) Unwrap() error {
	return e.Err
}

// Listener is told about every question that was stored successfully.
type Listener func(question string, at time.Time)

// Observed wraps a Recorder and notifies listeners after each successful append.
type Observed struct {
	next      Recorder
	listeners []Listener
}

// Observe returns a Recorder that forwards to next and then calls listeners.
func Observe(next Recorder, listeners ...Listener) *Observed {
	return &Observed{next: next, listeners: listeners}
}

// Record stores the question and fans it out to listeners.
func (o *Observed) Record(ctx context.Context, question string) error {
	if err := o.next.Record(ctx, question); err != nil {
		return err
	}
	now := time.Now()
	for _, l := range o.listeners {
		notify(l, question, now)
	}
	return nil
}

// notify keeps a misbehaving listener from failing the append.
func notify(l Listener, question string, at time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("fallback listener panicked", "panic", r)
		}
	}()
	l(question, at)
}
