package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Edit cuts every segment into an isolated scratch dir, then concatenates
// them. ffmpeg runs inside the scratch dir so the concat list only holds
// plain relative names.
func (e *implEditor) Edit(ctx context.Context, videoPath string, segments []transcript.Segment, outPath string) error {
	if len(segments) == 0 {
		return failure.Newf(failure.InvalidResponse, "edit", "no segments to keep")
	}

	absVideo, err := filepath.Abs(videoPath)
	if err != nil {
		return fmt.Errorf("resolve video path: %w", err)
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	scratch, err := os.MkdirTemp("", "edit-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	e.logger.Info(ctx, "Cutting %d segments from %s", len(segments), filepath.Base(videoPath))

	var list strings.Builder
	for i, seg := range segments {
		name := fmt.Sprintf("segment_%04d.mp4", i)
		if err := e.ffmpeg(ctx, scratch, fmt.Sprintf("cut segment %d", i+1),
			"-y",
			"-ss", formatSeconds(seg.Start),
			"-t", formatSeconds(seg.Duration()),
			"-i", absVideo,
			"-c", "copy",
			"-avoid_negative_ts", "make_zero",
			name,
		); err != nil {
			return err
		}
		fmt.Fprintf(&list, "file '%s'\n", name)
	}

	listPath := filepath.Join(scratch, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	if err := e.ffmpeg(ctx, scratch, "concat",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", "concat.txt",
		"-c", "copy",
		"-f", "mp4",
		absOut,
	); err != nil {
		return err
	}

	e.logger.Info(ctx, "Edited video written: %s", outPath)
	return nil
}

func (e *implEditor) ffmpeg(ctx context.Context, dir, step string, args ...string) error {
	if t := e.cfg.Tools.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	if _, err := e.executor.ExecuteInDir(ctx, dir, e.cfg.FFmpeg.Binary, args...); err != nil {
		return failure.FromExec(ctx, "ffmpeg "+step, err)
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
