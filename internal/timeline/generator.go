package timeline

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
)

const (
	formatID = "r1"
	sourceID = "r2"
	audioID  = "r3"
	editedID = "r4"
)

// Generate lays the transcript segments end to end on a spine of clips cut
// from the source video, each with the matching span of the denoised audio
// connected below it.
func (g *implGenerator) Generate(ctx context.Context, in Input, outPath string) error {
	if err := in.Transcript.Validate(); err != nil {
		return failure.New(failure.InvalidResponse, "timeline", err)
	}

	info, err := g.prober.Probe(ctx, in.EditedVideo)
	if err != nil {
		return err
	}

	g.logger.Info(ctx, "Building timeline for %s: %dx%d @ %d/%d fps, %d clips",
		in.Name, info.Width, info.Height, info.FrameNum, info.FrameDen, len(in.Transcript.Segments))

	doc, err := Build(in, info.Width, info.Height, info.FrameNum, info.FrameDen)
	if err != nil {
		return failure.New(failure.InvalidResponse, "timeline", err)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}

	out := append([]byte(xml.Header+"<!DOCTYPE fcpxml>\n"), data...)
	if err := os.WriteFile(outPath, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}
	return nil
}

// Build assembles the FCPXML document for in.
func Build(in Input, width, height, frameNum, frameDen int) (*FCPXML, error) {
	if frameNum <= 0 || frameDen <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d/%d", frameNum, frameDen)
	}

	total := in.Transcript.Duration()
	doc := &FCPXML{
		Version: Version,
		Resources: Resources{
			Formats: []Format{{
				ID:            formatID,
				Name:          fmt.Sprintf("FFVideoFormat%dx%d@%d", width, height, (frameNum+frameDen/2)/frameDen),
				FrameDuration: fmt.Sprintf("%d/%ds", frameDen, frameNum),
				Width:         width,
				Height:        height,
			}},
		},
	}

	assets := []struct {
		id, path     string
		video, audio bool
	}{
		{sourceID, in.SourceVideo, true, true},
		{audioID, in.DenoisedAudio, false, true},
		{editedID, in.EditedVideo, true, true},
	}
	for _, a := range assets {
		src, err := fileURL(a.path)
		if err != nil {
			return nil, err
		}
		asset := Asset{
			ID:       a.id,
			Name:     filepath.Base(a.path),
			Start:    "0s",
			HasVideo: flag(a.video),
			HasAudio: flag(a.audio),
			MediaRep: MediaRep{Kind: "original-media", Src: src},
		}
		if a.video {
			asset.Format = formatID
		}
		if a.id == editedID {
			asset.Duration = seconds(total)
		}
		doc.Resources.Assets = append(doc.Resources.Assets, asset)
	}

	var spine Spine
	offset := 0.0
	for i, seg := range in.Transcript.Segments {
		dur := seg.Duration()
		clip := Clip{
			Name:     fmt.Sprintf("Segment %d", i+1),
			Ref:      sourceID,
			Offset:   seconds(offset),
			Start:    seconds(seg.Start),
			Duration: seconds(dur),
			Connected: []Clip{{
				Name:     fmt.Sprintf("Segment %d audio", i+1),
				Ref:      audioID,
				Lane:     "-1",
				Offset:   seconds(seg.Start),
				Start:    seconds(seg.Start),
				Duration: seconds(dur),
			}},
		}
		spine.Clips = append(spine.Clips, clip)
		offset += dur
	}

	doc.Library = Library{Events: []Event{{
		Name: "Auto Edited",
		Projects: []Project{{
			Name: in.Name + " Cleaned Timeline",
			Sequence: Sequence{
				Format:   formatID,
				Duration: seconds(total),
				TCStart:  "0s",
				TCFormat: "NDF",
				Spine:    spine,
			},
		}},
	}}}

	return doc, nil
}

func seconds(s float64) string {
	return fmt.Sprintf("%.3fs", s)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
