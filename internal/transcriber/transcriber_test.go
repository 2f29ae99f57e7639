package transcriber

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/edit-flow/internal/config"
	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

const sampleWhisper = `{
  "transcription": [
    {"timestamps": {"from": "00:00:00,000", "to": "00:00:02,500"}, "offsets": {"from": 0, "to": 2500}, "text": " Hello and welcome."},
    {"timestamps": {"from": "00:00:02,500", "to": "00:00:02,500"}, "offsets": {"from": 2500, "to": 2500}, "text": " "},
    {"timestamps": {"from": "00:00:02,500", "to": "00:00:06,000"}, "offsets": {"from": 2500, "to": 6000}, "text": " Today we cut video."}
  ]
}`

func TestParseWhisperJSON(t *testing.T) {
	tr, err := ParseWhisperJSON([]byte(sampleWhisper))
	if err != nil {
		t.Fatalf("ParseWhisperJSON() error = %v", err)
	}
	want := []transcript.Segment{
		{Start: 0, End: 2.5, Text: "Hello and welcome."},
		{Start: 2.5, End: 6, Text: "Today we cut video."},
	}
	if len(tr.Segments) != len(want) {
		t.Fatalf("segments = %+v", tr.Segments)
	}
	for i := range want {
		if tr.Segments[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, tr.Segments[i], want[i])
		}
	}
}

func TestParseWhisperJSONEmpty(t *testing.T) {
	for _, in := range []string{`{"transcription":[]}`, `{"transcription":[{"offsets":{"from":0,"to":10},"text":"  "}]}`, `nope`} {
		if _, err := ParseWhisperJSON([]byte(in)); err == nil {
			t.Errorf("ParseWhisperJSON(%s) should fail", in)
		}
	}
}

// fakeExecutor writes whisper's JSON next to the requested output prefix.
type fakeExecutor struct {
	whisperOut string
	calls      [][]string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	for i, a := range args {
		if a == "--output-file" && f.whisperOut != "" {
			return "", os.WriteFile(args[i+1]+".json", []byte(f.whisperOut), 0644)
		}
	}
	return "", nil
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func TestTranscribe(t *testing.T) {
	cfg := config.Default()
	cfg.Whisper.Prompt = "Go, ffmpeg"
	fe := &fakeExecutor{whisperOut: sampleWhisper}
	out := filepath.Join(t.TempDir(), "v_transcript.json")

	if err := New(cfg, fe, logger.Nop()).Transcribe(context.Background(), "v_clean.wav", out); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	tr, err := transcript.Load(out)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Errorf("segments = %d, want 2", len(tr.Segments))
	}

	if len(fe.calls) != 2 || fe.calls[0][0] != "ffmpeg" || fe.calls[1][0] != "whisper-cli" {
		t.Fatalf("calls = %v", fe.calls)
	}
	if !strings.Contains(strings.Join(fe.calls[0], " "), "-ar 16000 -ac 1") {
		t.Errorf("resample args = %v", fe.calls[0])
	}
	whisper := strings.Join(fe.calls[1], " ")
	if !strings.Contains(whisper, "-oj") || !strings.Contains(whisper, "--prompt Go, ffmpeg") {
		t.Errorf("whisper args = %s", whisper)
	}
}

func TestTranscribeNoOutput(t *testing.T) {
	fe := &fakeExecutor{}
	out := filepath.Join(t.TempDir(), "v_transcript.json")

	err := New(config.Default(), fe, logger.Nop()).Transcribe(context.Background(), "v_clean.wav", out)
	if !failure.Is(err, failure.InvalidResponse) {
		t.Errorf("Transcribe() kind = %v, want invalid_response", failure.KindOf(err))
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Error("no transcript should be written")
	}
}

func TestTranscribeSilence(t *testing.T) {
	fe := &fakeExecutor{whisperOut: `{"transcription":[]}`}
	out := filepath.Join(t.TempDir(), "v_transcript.json")

	err := New(config.Default(), fe, logger.Nop()).Transcribe(context.Background(), "v_clean.wav", out)
	if !failure.Is(err, failure.InvalidResponse) {
		t.Errorf("Transcribe() kind = %v, want invalid_response", failure.KindOf(err))
	}
}
