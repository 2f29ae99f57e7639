// Package pipeline sequences the processing stages for each video, skipping
// work whose artifacts are already valid, and runs videos concurrently.
package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/edit-flow/internal/artifact"
	"github.com/nguyentantai21042004/edit-flow/internal/media"
)

// StageID names a stage. The order of the pipeline is fixed by NewStages.
type StageID string

const (
	StageDenoise      StageID = "denoise"
	StageTranscribe   StageID = "transcribe"
	StageClean        StageID = "clean"
	StageEditSegments StageID = "edit_segments"
	StageTimeline     StageID = "timeline"
)

func (s StageID) String() string { return string(s) }

// Inputs maps each required artifact kind to its canonical path.
type Inputs map[artifact.Kind]string

// Outputs maps each produced artifact kind to its canonical path.
type Outputs map[artifact.Kind]string

// Stage is one step of the pipeline. The set of implementations is closed:
// only this package can build stages, through NewStages.
type Stage interface {
	ID() StageID
	Requires() []artifact.Kind
	Produces() []artifact.Kind
	// IsSatisfied reports whether every produced artifact already exists
	// and passes its validity check.
	IsSatisfied(v media.Video) bool
	// Run produces the stage's artifacts. Outputs are published atomically:
	// on error nothing new is visible at the canonical paths. Errors are
	// classified *failure.Failure values.
	Run(ctx context.Context, v media.Video, in Inputs) (Outputs, error)

	sealed()
}

type baseStage struct {
	id       StageID
	requires []artifact.Kind
	produces []artifact.Kind
	store    *artifact.Store
}

func (b *baseStage) ID() StageID               { return b.id }
func (b *baseStage) Requires() []artifact.Kind { return b.requires }
func (b *baseStage) Produces() []artifact.Kind { return b.produces }
func (b *baseStage) sealed()                   {}

func (b *baseStage) IsSatisfied(v media.Video) bool {
	return b.store.Satisfied(v.ID, b.produces...)
}

// publish runs write against temp paths for every produced kind and returns
// the canonical locations once they are in place.
func (b *baseStage) publish(v media.Video, write artifact.WriteFunc) (Outputs, error) {
	if err := b.store.Publish(v.ID, b.produces, write); err != nil {
		return nil, err
	}
	out := make(Outputs, len(b.produces))
	for _, k := range b.produces {
		out[k] = b.store.Path(k, v.ID)
	}
	return out, nil
}
