package db

import "errors"

// Domain-level database error sentinels.
var (
	// QA dataset errors
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrTableNotEmpty = errors.New("qa_records already contains data")
)
