package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
)

// Probe runs a single ffprobe JSON call against path.
func (p *implProber) Probe(ctx context.Context, path string) (*Info, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	out, err := p.executor.Execute(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		return nil, failure.FromExec(ctx, "ffprobe", err)
	}

	info, err := ParseJSON([]byte(out))
	if err != nil {
		return nil, failure.New(failure.InvalidResponse, "ffprobe", err)
	}
	return info, nil
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	RFrameRate  string         `json:"r_frame_rate"`
	Disposition map[string]int `json:"disposition"`
}

// ParseJSON converts raw ffprobe JSON into an Info for the first real video
// stream. Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Info, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	for _, s := range raw.Streams {
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("video stream has no dimensions")
		}
		num, den, err := parseRational(s.RFrameRate)
		if err != nil {
			return nil, fmt.Errorf("r_frame_rate: %w", err)
		}
		d, _ := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64)
		return &Info{
			Width:    s.Width,
			Height:   s.Height,
			FrameNum: num,
			FrameDen: den,
			Duration: d,
		}, nil
	}

	return nil, fmt.Errorf("no video stream found")
}

// parseRational parses ffprobe rates like "30000/1001" or "25".
func parseRational(s string) (int, int, error) {
	numStr, denStr, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		denStr = "1"
	}
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, 0, err
	}
	den, err := strconv.Atoi(denStr)
	if err != nil {
		return 0, 0, err
	}
	if num <= 0 || den <= 0 {
		return 0, 0, fmt.Errorf("invalid rate %q", s)
	}
	return num, den, nil
}
