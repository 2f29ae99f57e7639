package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Transcribe resamples the audio to 16 kHz mono, which is what whisper
// expects, runs whisper with JSON output and converts the result.
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath, outPath string) error {
	scratch, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	monoWAV := filepath.Join(scratch, "audio16k.wav")
	t.logger.Info(ctx, "Resampling audio for whisper: %s", audioPath)
	if err := t.run(ctx, "ffmpeg resample", t.cfg.FFmpeg.Binary,
		"-y",
		"-i", audioPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		monoWAV,
	); err != nil {
		return err
	}

	prefix := filepath.Join(scratch, "whisper")
	args := []string{
		"-m", t.cfg.Whisper.ModelPath,
		"-f", monoWAV,
		"-oj",
		"-l", t.cfg.Whisper.Language,
		"-t", strconv.Itoa(t.cfg.Whisper.Threads),
		"-bo", "5",
		"--output-file", prefix,
	}
	if t.cfg.Whisper.Prompt != "" {
		args = append(args, "--prompt", t.cfg.Whisper.Prompt)
	}

	t.logger.Info(ctx, "Starting transcription with %d threads: %s", t.cfg.Whisper.Threads, audioPath)
	if err := t.run(ctx, "whisper", t.cfg.Whisper.BinaryPath, args...); err != nil {
		return err
	}

	data, err := os.ReadFile(prefix + ".json")
	if err != nil {
		return failure.New(failure.InvalidResponse, "whisper", fmt.Errorf("read output: %w", err))
	}
	tr, err := ParseWhisperJSON(data)
	if err != nil {
		return failure.New(failure.InvalidResponse, "whisper", err)
	}

	if err := transcript.Write(outPath, tr); err != nil {
		return err
	}
	t.logger.Info(ctx, "Transcription completed: %d segments", len(tr.Segments))
	return nil
}

func (t *implTranscriber) run(ctx context.Context, op, name string, args ...string) error {
	if d := t.cfg.Tools.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if _, err := t.executor.Execute(ctx, name, args...); err != nil {
		return failure.FromExec(ctx, op, err)
	}
	return nil
}

type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// ParseWhisperJSON converts whisper.cpp -oj output into a transcript.
// Offsets are milliseconds. Blank and zero-length entries are dropped; an
// output with nothing left is an error.
func ParseWhisperJSON(data []byte) (transcript.Transcript, error) {
	var raw whisperOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return transcript.Transcript{}, fmt.Errorf("parse whisper JSON: %w", err)
	}

	var tr transcript.Transcript
	for _, e := range raw.Transcription {
		text := strings.TrimSpace(e.Text)
		if text == "" || e.Offsets.To <= e.Offsets.From {
			continue
		}
		tr.Segments = append(tr.Segments, transcript.Segment{
			Start: float64(e.Offsets.From) / 1000,
			End:   float64(e.Offsets.To) / 1000,
			Text:  text,
		})
	}

	if err := tr.Validate(); err != nil {
		return transcript.Transcript{}, err
	}
	return tr, nil
}
