package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"qabot/internal/models"
)

// ListQARecords returns the whole dataset in source order.
func (d *DB) ListQARecords(ctx context.Context) ([]models.QARecord, error) {
	rows, err := d.Pool.Query(ctx, `SELECT question, answer FROM qa_records ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.QARecord
	for rows.Next() {
		var r models.QARecord
		if err := rows.Scan(&r.Question, &r.Answer); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountQARecords returns the number of stored records.
func (d *DB) CountQARecords(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM qa_records`).Scan(&n)
	return n, err
}

// SeedQARecords bulk-loads records into an empty qa_records table, keeping
// their order. It refuses to touch a table that already has rows.
func (d *DB) SeedQARecords(ctx context.Context, records []models.QARecord) (int64, error) {
	for i, r := range records {
		if strings.TrimSpace(r.Question) == "" {
			return 0, fmt.Errorf("record %d: %w", i+1, ErrEmptyQuestion)
		}
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent seeders.
	if _, err := tx.Exec(ctx, `LOCK TABLE qa_records IN EXCLUSIVE MODE`); err != nil {
		return 0, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM qa_records)`).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrTableNotEmpty
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"qa_records"},
		[]string{"position", "question", "answer"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return []any{i, records[i].Question, records[i].Answer}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy qa records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
