package fallback

import (
	"context"
	"strings"

	"qabot/internal/models"
)

// QuestionInserter is implemented by storage that keeps unanswered questions in a table.
type QuestionInserter interface {
	InsertUnansweredQuestion(ctx context.Context, question string) (*models.UnansweredQuestion, error)
}

// DBLogger records unanswered questions as table rows.
type DBLogger struct {
	db QuestionInserter
}

// NewDBLogger creates a database-backed Recorder.
func NewDBLogger(db QuestionInserter) *DBLogger {
	return &DBLogger{db: db}
}

// Record inserts one row. NUL bytes are dropped since TEXT columns reject them.
func (l *DBLogger) Record(ctx context.Context, question string) error {
	question = strings.ReplaceAll(question, "\x00", "")
	if _, err := l.db.InsertUnansweredQuestion(ctx, question); err != nil {
		return &LogWriteError{Sink: "postgres:unanswered_questions", Err: err}
	}
	return nil
}
