package db

import (
	"context"

	"github.com/google/uuid"

	"qabot/internal/models"
)

// InsertUnansweredQuestion records a question the bot could not answer.
func (d *DB) InsertUnansweredQuestion(ctx context.Context, question string) (*models.UnansweredQuestion, error) {
	q := models.UnansweredQuestion{ID: uuid.New(), Question: question}
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO unanswered_questions (id, question)
		VALUES ($1, $2)
		RETURNING created_at
	`, q.ID, question).Scan(&q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CountUnansweredQuestions returns the number of recorded questions.
func (d *DB) CountUnansweredQuestions(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM unanswered_questions`).Scan(&n)
	return n, err
}
