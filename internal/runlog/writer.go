package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer appends records to a JSONL file. Each record is a single Write on
// an O_APPEND descriptor, serialized by a mutex, so concurrent pipelines
// never interleave lines.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	path string
	now  func() time.Time
}

// Open opens (creating if needed) runs.jsonl under logDir.
func Open(logDir string) (*Writer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &Writer{f: f, path: path, now: time.Now}, nil
}

// Path returns the file being appended to.
func (w *Writer) Path() string {
	return w.path
}

// Append writes r as one line. A zero Timestamp is stamped with the current time.
func (w *Writer) Append(r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = w.now().UTC()
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("append run record: %w", err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.f.Write(data); err != nil {
		return fmt.Errorf("append run record: %w", err)
	}
	return nil
}

// Sync flushes the log to stable storage.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Sync()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
