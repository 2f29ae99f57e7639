package timeline

import (
	"context"

	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Generator writes an FCPXML timeline for one video.
type Generator interface {
	Generate(ctx context.Context, in Input, outPath string) error
}

// Input is everything the timeline references.
type Input struct {
	Name          string
	Transcript    transcript.Transcript
	SourceVideo   string
	DenoisedAudio string
	EditedVideo   string
}
