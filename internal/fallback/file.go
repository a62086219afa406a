package fallback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileLogger appends one CSV-quoted question per line to a file.
// Appends are serialized so concurrent callers never interleave entries.
type FileLogger struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	closed bool
}

// OpenFile opens (creating if needed) the log at path for appending.
func OpenFile(path string) (*FileLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &LogWriteError{Sink: path, Err: err}
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &LogWriteError{Sink: path, Err: err}
	}
	return &FileLogger{f: f, path: path}, nil
}

// Path returns the log file location.
func (l *FileLogger) Path() string {
	return l.path
}

// Record appends question as a single entry.
func (l *FileLogger) Record(_ context.Context, question string) error {
	line := encodeEntry(question)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return &LogWriteError{Sink: l.path, Err: os.ErrClosed}
	}
	if _, err := l.f.WriteString(line); err != nil {
		return &LogWriteError{Sink: l.path, Err: fmt.Errorf("append: %w", err)}
	}
	return nil
}

// Close flushes and closes the file. Later Records fail.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.f.Sync(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

// encodeEntry always quotes so empty and multi-line questions stay one record.
func encodeEntry(question string) string {
	return `"` + strings.ReplaceAll(question, `"`, `""`) + "\"\n"
}
