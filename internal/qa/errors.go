package qa

import "errors"

var (
	// ErrNoMatch is returned by Lookup when no stored question is close enough.
	ErrNoMatch = errors.New("no matching question")

	// ErrNoRecords means the source held no record with a non-empty question.
	ErrNoRecords = errors.New("dataset contains no usable records")

	// ErrMissingColumn means the question or answer column could not be found.
	ErrMissingColumn = errors.New("required column missing")
)

// DataSourceError reports that the QA dataset could not be loaded.
// A store is never built from a failed source.
type DataSourceError struct {
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return "qa data source " + e.Source + ": " + e.Err.Error()
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}
