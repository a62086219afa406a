package fallback

import (
	"context"
	"testing"

	"qabot/internal/testutil"
)

func TestDBLogger_Postgres(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	l := NewDBLogger(database)

	for _, q := range []string{"Do you sell hats?", "Do you sell hats?", "", "hats?\x00"} {
		if err := l.Record(ctx, q); err != nil {
			t.Fatalf("Record(%q) error = %v", q, err)
		}
	}

	n, err := database.CountUnansweredQuestions(ctx)
	if err != nil {
		t.Fatalf("CountUnansweredQuestions() error = %v", err)
	}
	if n != 4 {
		t.Errorf("CountUnansweredQuestions() = %d, want 4", n)
	}
}
