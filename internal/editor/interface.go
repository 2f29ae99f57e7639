package editor

import (
	"context"

	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Editor cuts a video down to the given segments.
type Editor interface {
	// Edit writes the segments of videoPath, joined in order, to outPath.
	Edit(ctx context.Context, videoPath string, segments []transcript.Segment, outPath string) error
}
