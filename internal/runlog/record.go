// Package runlog keeps the append-only record of every stage attempt.
package runlog

import (
	"errors"
	"fmt"
	"time"
)

// FileName is the run log inside the log directory.
const FileName = "runs.jsonl"

// Outcome is the result of one stage attempt.
type Outcome string

const (
	Started Outcome = "started"
	Success Outcome = "success"
	Failure Outcome = "failure"
	Skipped Outcome = "skipped"
)

// Record describes one attempt of one stage for one video. Records are
// written once and never rewritten.
type Record struct {
	RunID      string    `json:"run_id"`
	Video      string    `json:"video"`
	Source     string    `json:"source,omitempty"`
	Stage      string    `json:"stage"`
	Outcome    Outcome   `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Outputs    []string  `json:"outputs,omitempty"`
}

// Validate rejects records that cannot be attributed to a video and stage.
func (r Record) Validate() error {
	if r.Video == "" {
		return errors.New("record has no video")
	}
	if r.Stage == "" {
		return errors.New("record has no stage")
	}
	switch r.Outcome {
	case Started, Success, Failure, Skipped:
	default:
		return fmt.Errorf("unknown outcome %q", r.Outcome)
	}
	if r.Outcome == Failure && r.Error == "" {
		return errors.New("failure record without error detail")
	}
	return nil
}

// Recorder accepts run records.
type Recorder interface {
	Append(r Record) error
}
