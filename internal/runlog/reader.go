package runlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Read loads every record from the run log in logDir. A missing log is an
// empty history. A malformed final line (a write cut short by a crash) is
// ignored; malformed lines elsewhere are an error.
func Read(logDir string) ([]Record, error) {
	f, err := os.Open(filepath.Join(logDir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses JSONL records from r.
func Decode(r io.Reader) ([]Record, error) {
	var (
		records []Record
		pending error
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if pending != nil {
			return nil, pending
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			pending = fmt.Errorf("parse run log line %d: %w", lineNo, err)
			continue
		}
		if err := rec.Validate(); err != nil {
			pending = fmt.Errorf("validate run log line %d: %w", lineNo, err)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read run log: %w", err)
	}
	return records, nil
}

// History is the latest terminal record per video and stage.
type History map[string]map[string]Record

// Progress reduces records to the latest terminal (non-started) outcome per
// video and stage. Records are taken in file order.
func Progress(records []Record) History {
	h := History{}
	for _, r := range records {
		if r.Outcome == Started {
			continue
		}
		stages, ok := h[r.Video]
		if !ok {
			stages = map[string]Record{}
			h[r.Video] = stages
		}
		stages[r.Stage] = r
	}
	return h
}

// Last returns the latest terminal record for video and stage.
func (h History) Last(video, stage string) (Record, bool) {
	r, ok := h[video][stage]
	return r, ok
}

// Videos returns the video IDs in the history, sorted.
func (h History) Videos() []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Interrupted returns (video, stage) pairs whose most recent record is a
// start with no matching terminal record after it, which happens when the
// process died mid-stage.
func Interrupted(records []Record) map[string]string {
	open := map[string]string{}
	for _, r := range records {
		switch r.Outcome {
		case Started:
			open[r.Video] = r.Stage
		default:
			if open[r.Video] == r.Stage {
				delete(open, r.Video)
			}
		}
	}
	return open
}
