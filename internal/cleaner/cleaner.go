package cleaner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/edit-flow/internal/config"
	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

const segmentPrompt = "Clean and improve the following transcript segment while preserving all visual markers and timing information:\n%s"

const documentPrompt = `You are an AI video editor. Your task is to clean and optimize the transcript for video editing.

Instructions:
1. Remove duplicate phrases and redundant content
2. Remove off-topic content and filler words
3. Remove silent/empty space indicators
4. Preserve segments containing 'start visual' and 'end visual'
5. Maintain the original timing information
6. Return the result in the same JSON format as input

Transcript to process: %s

Return only the cleaned transcript in JSON format, maintaining the same structure.`

// Clean checks the service is reachable, then cleans raw in the configured mode.
func (c *implCleaner) Clean(ctx context.Context, raw transcript.Transcript) (transcript.Transcript, error) {
	if err := raw.Validate(); err != nil {
		return transcript.Transcript{}, failure.New(failure.InvalidResponse, "clean input", err)
	}
	if err := c.client.Available(ctx); err != nil {
		return transcript.Transcript{}, err
	}

	if c.mode == config.ModeDocument {
		return c.cleanDocument(ctx, raw)
	}
	return c.cleanSegments(ctx, raw)
}

func (c *implCleaner) cleanSegments(ctx context.Context, raw transcript.Transcript) (transcript.Transcript, error) {
	out := transcript.Transcript{Segments: make([]transcript.Segment, 0, len(raw.Segments))}

	for i, seg := range raw.Segments {
		text, err := c.client.Generate(ctx, fmt.Sprintf(segmentPrompt, seg.Text))
		if err != nil {
			return transcript.Transcript{}, fmt.Errorf("segment %d/%d: %w", i+1, len(raw.Segments), err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return transcript.Transcript{}, failure.Newf(failure.InvalidResponse, "clean segment", "segment %d: empty text", i+1)
		}
		out.Segments = append(out.Segments, transcript.Segment{Start: seg.Start, End: seg.End, Text: text})
		c.logger.Debug(ctx, "Processed segment %d/%d", i+1, len(raw.Segments))
	}

	return out, nil
}

func (c *implCleaner) cleanDocument(ctx context.Context, raw transcript.Transcript) (transcript.Transcript, error) {
	payload, err := json.Marshal(raw.Segments)
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("encode segments: %w", err)
	}

	resp, err := c.client.Generate(ctx, fmt.Sprintf(documentPrompt, payload))
	if err != nil {
		return transcript.Transcript{}, err
	}

	cleaned, err := ParseResponse(resp)
	if err != nil {
		return transcript.Transcript{}, failure.New(failure.InvalidResponse, "clean document", err)
	}
	if err := cleaned.Validate(); err != nil {
		return transcript.Transcript{}, failure.New(failure.InvalidResponse, "clean document", err)
	}
	if err := withinBounds(raw, cleaned); err != nil {
		return transcript.Transcript{}, failure.New(failure.InvalidResponse, "clean document", err)
	}

	c.logger.Info(ctx, "LLM kept %d of %d segments", len(cleaned.Segments), len(raw.Segments))
	return cleaned, nil
}

// ParseResponse extracts a transcript from a model reply. It accepts either
// {"segments": [...]} or a bare segment array, optionally wrapped in a
// markdown code fence or surrounded by prose.
func ParseResponse(resp string) (transcript.Transcript, error) {
	body := stripFence(strings.TrimSpace(resp))

	var t transcript.Transcript
	if err := json.Unmarshal([]byte(body), &t); err == nil && t.Segments != nil {
		return t, nil
	}
	var segs []transcript.Segment
	if err := json.Unmarshal([]byte(body), &segs); err == nil {
		return transcript.Transcript{Segments: segs}, nil
	}

	if obj := extract(body, '{', '}'); obj != "" {
		if err := json.Unmarshal([]byte(obj), &t); err == nil && t.Segments != nil {
			return t, nil
		}
	}
	if arr := extract(body, '[', ']'); arr != "" {
		if err := json.Unmarshal([]byte(arr), &segs); err == nil {
			return transcript.Transcript{Segments: segs}, nil
		}
	}

	return transcript.Transcript{}, errors.New("response is not transcript JSON")
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func extract(s string, open, close byte) string {
	i := strings.IndexByte(s, open)
	j := strings.LastIndexByte(s, close)
	if i < 0 || j <= i {
		return ""
	}
	return s[i : j+1]
}

// withinBounds rejects segments the model invented outside the source timing.
func withinBounds(raw, cleaned transcript.Transcript) error {
	lo, hi := raw.Segments[0].Start, raw.Segments[0].End
	for _, s := range raw.Segments {
		lo = min(lo, s.Start)
		hi = max(hi, s.End)
	}
	const slack = 0.5
	for i, s := range cleaned.Segments {
		if s.Start < lo-slack || s.End > hi+slack {
			return fmt.Errorf("segment %d [%.3f, %.3f] outside source range [%.3f, %.3f]", i, s.Start, s.End, lo, hi)
		}
	}
	return nil
}
