package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"qabot/internal/models"
)

type memRecorder struct {
	got []string
	err error
}

func (m *memRecorder) Record(_ context.Context, q string) error {
	if m.err != nil {
		return m.err
	}
	m.got = append(m.got, q)
	return nil
}

func TestObserved_NotifiesAfterSuccess(t *testing.T) {
	inner := &memRecorder{}
	var heard []string
	rec := Observe(inner, func(q string, at time.Time) {
		if at.IsZero() {
			t.Error("listener got zero time")
		}
		heard = append(heard, q)
	})

	if err := rec.Record(context.Background(), "hats?"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(inner.got) != 1 || len(heard) != 1 || heard[0] != "hats?" {
		t.Errorf("inner = %v, heard = %v", inner.got, heard)
	}
}

func TestObserved_SkipsListenersOnFailure(t *testing.T) {
	cause := errors.New("disk full")
	called := false
	rec := Observe(&memRecorder{err: cause}, func(string, time.Time) { called = true })

	if err := rec.Record(context.Background(), "hats?"); !errors.Is(err, cause) {
		t.Errorf("Record() error = %v, want %v", err, cause)
	}
	if called {
		t.Error("listener called after a failed append")
	}
}

func TestObserved_ListenerPanicIsContained(t *testing.T) {
	second := false
	rec := Observe(&memRecorder{},
		func(string, time.Time) { panic("boom") },
		func(string, time.Time) { second = true },
	)

	if err := rec.Record(context.Background(), "hats?"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !second {
		t.Error("second listener not called after first panicked")
	}
}

type fakeInserter struct {
	err error
	got []string
}

func (f *fakeInserter) InsertUnansweredQuestion(_ context.Context, q string) (*models.UnansweredQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = append(f.got, q)
	return &models.UnansweredQuestion{Question: q, CreatedAt: time.Now()}, nil
}

func TestDBLogger(t *testing.T) {
	ins := &fakeInserter{}
	l := NewDBLogger(ins)
	if err := l.Record(context.Background(), "hats?"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(ins.got) != 1 || ins.got[0] != "hats?" {
		t.Errorf("inserted = %v", ins.got)
	}

	if err := l.Record(context.Background(), "a\x00b\x00"); err != nil {
		t.Fatalf("Record() with NUL error = %v", err)
	}
	if len(ins.got) != 2 || ins.got[1] != "ab" {
		t.Errorf("inserted = %q, want NUL bytes dropped", ins.got)
	}

	cause := errors.New("connection refused")
	err := NewDBLogger(&fakeInserter{err: cause}).Record(context.Background(), "hats?")
	var lwErr *LogWriteError
	if !errors.As(err, &lwErr) || !errors.Is(err, cause) {
		t.Errorf("Record() error = %v, want *LogWriteError wrapping %v", err, cause)
	}
}
