package fallback

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readEntries(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse log: %v", err)
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out
}

func openTestLog(t *testing.T) *FileLogger {
	t.Helper()
	l, err := OpenFile(filepath.Join(t.TempDir(), "logs", "bank.csv"))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestFileLogger_SequentialOrder(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	want := []string{
		"Do you sell hats?",
		"Do you sell hats?", // repeats are kept
		"",
		`She said "hi", then left`,
		"line one\nline two",
		"¿Venden sombreros?",
	}
	for _, q := range want {
		if err := l.Record(ctx, q); err != nil {
			t.Fatalf("Record(%q) error = %v", q, err)
		}
	}

	if diff := cmp.Diff(want, readEntries(t, l.Path())); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestFileLogger_Concurrent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	const n = 50
	want := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		want[i] = fmt.Sprintf("unmatched question number %02d, with a comma", i)
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			if err := l.Record(ctx, q); err != nil {
				t.Errorf("Record() error = %v", err)
			}
		}(want[i])
	}
	wg.Wait()

	got := readEntries(t, l.Path())
	sort.Strings(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestFileLogger_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	if err := os.WriteFile(path, []byte("\"older entry\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if err := l.Record(context.Background(), "newer entry"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if diff := cmp.Diff([]string{"older entry", "newer entry"}, readEntries(t, path)); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestFileLogger_RecordAfterClose(t *testing.T) {
	l := openTestLog(t)
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	err := l.Record(context.Background(), "too late")
	var lwErr *LogWriteError
	if !errors.As(err, &lwErr) {
		t.Fatalf("Record() error = %v, want *LogWriteError", err)
	}
	if !errors.Is(err, os.ErrClosed) {
		t.Errorf("Record() error = %v, want os.ErrClosed", err)
	}
}

func TestOpenFile_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	// A regular file where a directory is expected.
	_, err := OpenFile(filepath.Join(blocker, "bank.csv"))
	var lwErr *LogWriteError
	if !errors.As(err, &lwErr) {
		t.Fatalf("OpenFile() error = %v, want *LogWriteError", err)
	}
}

func TestEncodeEntry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "\"plain\"\n"},
		{"", "\"\"\n"},
		{`a "quote"`, "\"a \"\"quote\"\"\"\n"},
	}
	for _, tt := range tests {
		if got := encodeEntry(tt.in); got != tt.want {
			t.Errorf("encodeEntry(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
