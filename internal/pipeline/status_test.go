package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/edit-flow/internal/runlog"
)

func TestWriteStatus(t *testing.T) {
	records := []runlog.Record{
		{Video: "talk", Stage: "denoise", Outcome: runlog.Started},
		{Video: "talk", Stage: "denoise", Outcome: runlog.Success},
		{Video: "talk", Stage: "transcribe", Outcome: runlog.Started},
		{Video: "talk", Stage: "transcribe", Outcome: runlog.Failure, Error: "boom", ErrorKind: "timeout"},
		{Video: "demo", Stage: "denoise", Outcome: runlog.Started},
	}

	var buf bytes.Buffer
	if err := WriteStatus(&buf, records); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "VIDEO") || !strings.Contains(lines[0], "edit_segments") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "demo") || !strings.Contains(lines[1], "interrupted") {
		t.Errorf("demo row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "talk") || !strings.Contains(lines[2], "success") || !strings.Contains(lines[2], "failure (timeout)") {
		t.Errorf("talk row = %q", lines[2])
	}
}

func TestWriteStatusEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatus(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No runs recorded") {
		t.Errorf("got %q", buf.String())
	}
}
