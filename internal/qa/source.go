package qa

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"qabot/internal/models"
)

// Header names accepted for each required column, compared case-insensitively.
var (
	questionColumns = []string{"question", "questions", "q"}
	answerColumns   = []string{"answer", "answers", "a", "response"}
)

// CSVSource reads QA records from a CSV (or, by extension, TSV) file with a
// header row. Columns other than question and answer are ignored.
type CSVSource struct {
	Path string
}

// Name identifies the source in logs and errors.
func (s CSVSource) Name() string {
	return "csv:" + s.Path
}

// Records reads the whole file.
func (s CSVSource) Records(ctx context.Context) ([]models.QARecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(s.Path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if strings.EqualFold(filepath.Ext(s.Path), ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(s.Path), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	qCol := findColumn(header, questionColumns)
	if qCol < 0 {
		return nil, fmt.Errorf("%w: question (have %v)", ErrMissingColumn, header)
	}
	aCol := findColumn(header, answerColumns)
	if aCol < 0 {
		return nil, fmt.Errorf("%w: answer (have %v)", ErrMissingColumn, header)
	}

	records := make([]models.QARecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var rec models.QARecord
		if qCol < len(row) {
			rec.Question = cleanCell(row[qCol])
		}
		if aCol < len(row) {
			rec.Answer = strings.TrimSpace(row[aCol])
		}
		records = append(records, rec)
	}
	return records, nil
}

// RecordLister is implemented by storage backends holding QA records.
type RecordLister interface {
	ListQARecords(ctx context.Context) ([]models.QARecord, error)
}

// TableSource reads QA records from a database table.
type TableSource struct {
	DB RecordLister
}

// Name identifies the source in logs and errors.
func (s TableSource) Name() string {
	return "postgres:qa_records"
}

// Records lists every row.
func (s TableSource) Records(ctx context.Context) ([]models.QARecord, error) {
	return s.DB.ListQARecords(ctx)
}

// StaticSource serves a fixed slice of records.
type StaticSource []models.QARecord

// Name identifies the source in logs and errors.
func (s StaticSource) Name() string {
	return "static"
}

// Records returns a copy of the slice.
func (s StaticSource) Records(context.Context) ([]models.QARecord, error) {
	out := make([]models.QARecord, len(s))
	copy(out, s)
	return out, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

func findColumn(header []string, candidates []string) int {
	for _, cand := range candidates {
		for i, col := range header {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}
