package denoiser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
)

// Denoise extracts the audio at 48 kHz stereo, runs it through the RNN noise
// model and muxes the result back under the original video stream.
func (d *implDenoiser) Denoise(ctx context.Context, videoPath, audioOut, videoOut string) error {
	model := d.cfg.Denoise.ModelPath
	if _, err := os.Stat(model); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failure.Newf(failure.DependencyUnreachable, "denoise", "noise model not found at %s", model)
		}
		return failure.New(failure.DependencyUnreachable, "denoise", err)
	}

	scratch, err := os.MkdirTemp("", "denoise-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)
	rawWAV := filepath.Join(scratch, "raw.wav")

	d.logger.Info(ctx, "Extracting audio: %s", videoPath)
	if err := d.ffmpeg(ctx, "extract audio",
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "48000",
		"-ac", "2",
		rawWAV,
	); err != nil {
		return err
	}

	d.logger.Info(ctx, "Applying noise reduction with model %s", model)
	if err := d.ffmpeg(ctx, "noise reduction",
		"-y",
		"-i", rawWAV,
		"-af", "arnndn=m=" + escapeFilterValue(model),
		"-acodec", "pcm_s16le",
		audioOut,
	); err != nil {
		return err
	}

	d.logger.Info(ctx, "Remuxing denoised audio into %s", filepath.Base(videoOut))
	if err := d.ffmpeg(ctx, "remux",
		"-y",
		"-i", videoPath,
		"-i", audioOut,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", d.cfg.FFmpeg.AudioBitrate,
		"-ar", "48000",
		"-ac", "2",
		"-f", "mp4",
		videoOut,
	); err != nil {
		return err
	}

	return nil
}

func (d *implDenoiser) ffmpeg(ctx context.Context, step string, args ...string) error {
	if t := d.cfg.Tools.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	if _, err := d.executor.Execute(ctx, d.cfg.FFmpeg.Binary, args...); err != nil {
		return failure.FromExec(ctx, "ffmpeg "+step, err)
	}
	return nil
}

var filterEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `,`, `\,`)

// escapeFilterValue quotes characters that ffmpeg's filtergraph parser
// treats as separators.
func escapeFilterValue(s string) string {
	return filterEscaper.Replace(filepath.ToSlash(s))
}
