// Package transcript holds the timed-segment transcript format shared by
// the transcribe, clean, edit and timeline stages.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Segment is one timed span of speech, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Transcript is the on-disk transcript document.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

var ErrEmpty = errors.New("transcript has no segments")

// Validate checks that the transcript has at least one segment and that every
// segment has sane timing and non-blank text.
func (t Transcript) Validate() error {
	if len(t.Segments) == 0 {
		return ErrEmpty
	}
	for i, s := range t.Segments {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks a single segment.
func (s Segment) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("negative start %.3f", s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("end %.3f not after start %.3f", s.End, s.Start)
	}
	if strings.TrimSpace(s.Text) == "" {
		return errors.New("blank text")
	}
	return nil
}

// Duration returns the summed length of all segments.
func (t Transcript) Duration() float64 {
	var total float64
	for _, s := range t.Segments {
		total += s.Duration()
	}
	return total
}

// Parse decodes transcript JSON without validating it.
func Parse(data []byte) (Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return Transcript{}, fmt.Errorf("parse transcript: %w", err)
	}
	return t, nil
}

// Load reads and validates the transcript at path.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return Transcript{}, err
	}
	if err := t.Validate(); err != nil {
		return Transcript{}, fmt.Errorf("invalid transcript %s: %w", path, err)
	}
	return t, nil
}

// Write encodes t as indented JSON at path.
func Write(path string, t Transcript) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
