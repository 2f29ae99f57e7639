package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestAppendAndRead(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	recs := []Record{
		{RunID: "r1", Video: "a", Stage: "denoise", Outcome: Started},
		{RunID: "r1", Video: "a", Stage: "denoise", Outcome: Success, DurationMS: 1200, Outputs: []string{"out/denoised/a.mp4"}},
		{RunID: "r1", Video: "a", Stage: "transcribe", Outcome: Failure, Error: "exit 1", ErrorKind: "non_zero_exit"},
	}
	for _, r := range recs {
		if err := w.Append(r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Read() = %d records, want 3", len(got))
	}
	if got[2].ErrorKind != "non_zero_exit" || got[1].Outputs[0] != "out/denoised/a.mp4" {
		t.Errorf("Read() = %+v", got)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("Append() should stamp a timestamp")
	}
}

func TestAppendIsAdditive(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		w, err := Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Append(Record{Video: "a", Stage: "clean", Outcome: Skipped}); err != nil {
			t.Fatal(err)
		}
		w.Close()
	}
	got, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("reopened log has %d records, want 2", len(got))
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	w, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	bad := []Record{
		{Stage: "denoise", Outcome: Success},
		{Video: "a", Outcome: Success},
		{Video: "a", Stage: "denoise", Outcome: "maybe"},
		{Video: "a", Stage: "denoise", Outcome: Failure},
	}
	for _, r := range bad {
		if err := w.Append(r); err == nil {
			t.Errorf("Append(%+v) should fail", r)
		}
	}
}

func TestConcurrentAppendDoesNotInterleave(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	const writers, each = 8, 50
	long := strings.Repeat("x", 8192)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < each; j++ {
				r := Record{Video: fmt.Sprintf("v%d", i), Stage: "clean", Outcome: Failure, Error: long}
				if err := w.Append(r); err != nil {
					t.Error(err)
				}
			}
		}(i)
	}
	wg.Wait()
	w.Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != writers*each {
		t.Fatalf("got %d lines, want %d", len(lines), writers*each)
	}
	for i, line := range lines {
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("line %d corrupted: %v", i+1, err)
		}
	}
}

func TestReadMissingLog(t *testing.T) {
	got, err := Read(t.TempDir())
	if err != nil || got != nil {
		t.Errorf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestDecodeTornTail(t *testing.T) {
	in := `{"video":"a","stage":"denoise","outcome":"success"}
{"video":"a","stage":"transcribe","outc`
	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Decode() = %d records, want 1", len(got))
	}

	in = `{"video":"a","stage":"denoise","outc
{"video":"a","stage":"transcribe","outcome":"success"}`
	if _, err := Decode(strings.NewReader(in)); err == nil {
		t.Error("Decode() should reject a malformed line before valid ones")
	}
}

func TestProgress(t *testing.T) {
	records := []Record{
		{Video: "a", Stage: "denoise", Outcome: Failure, Error: "x"},
		{Video: "a", Stage: "denoise", Outcome: Started},
		{Video: "a", Stage: "denoise", Outcome: Success},
		{Video: "b", Stage: "denoise", Outcome: Skipped},
		{Video: "a", Stage: "transcribe", Outcome: Started},
	}
	h := Progress(records)

	if r, ok := h.Last("a", "denoise"); !ok || r.Outcome != Success {
		t.Errorf("Last(a, denoise) = %+v, %v", r, ok)
	}
	if _, ok := h.Last("a", "transcribe"); ok {
		t.Error("started-only stage should have no terminal record")
	}
	if ids := h.Videos(); len(ids) != 2 || ids[0] != "a" {
		t.Errorf("Videos() = %v", ids)
	}

	open := Interrupted(records)
	if open["a"] != "transcribe" || len(open) != 1 {
		t.Errorf("Interrupted() = %v", open)
	}
}
