package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/edit-flow/internal/artifact"
	"github.com/nguyentantai21042004/edit-flow/internal/cleaner"
	"github.com/nguyentantai21042004/edit-flow/internal/denoiser"
	"github.com/nguyentantai21042004/edit-flow/internal/editor"
	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/media"
	"github.com/nguyentantai21042004/edit-flow/internal/timeline"
	"github.com/nguyentantai21042004/edit-flow/internal/transcriber"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Deps are the collaborators the stages call.
type Deps struct {
	Store       *artifact.Store
	Denoiser    denoiser.Denoiser
	Transcriber transcriber.Transcriber
	Cleaner     cleaner.Cleaner
	Editor      editor.Editor
	Timeline    timeline.Generator
}

// NewStages returns the pipeline in its fixed order:
// denoise, transcribe, clean, edit_segments, timeline.
func NewStages(d Deps) []Stage {
	return []Stage{
		&denoiseStage{
			baseStage: baseStage{
				id:       StageDenoise,
				produces: []artifact.Kind{artifact.DenoisedAudio, artifact.DenoisedVideo},
				store:    d.Store,
			},
			denoiser: d.Denoiser,
		},
		&transcribeStage{
			baseStage: baseStage{
				id:       StageTranscribe,
				requires: []artifact.Kind{artifact.DenoisedAudio},
				produces: []artifact.Kind{artifact.RawTranscript},
				store:    d.Store,
			},
			transcriber: d.Transcriber,
		},
		&cleanStage{
			baseStage: baseStage{
				id:       StageClean,
				requires: []artifact.Kind{artifact.RawTranscript},
				produces: []artifact.Kind{artifact.CleanedTranscript},
				store:    d.Store,
			},
			cleaner: d.Cleaner,
		},
		&editStage{
			baseStage: baseStage{
				id:       StageEditSegments,
				requires: []artifact.Kind{artifact.DenoisedVideo, artifact.CleanedTranscript},
				produces: []artifact.Kind{artifact.EditedVideo},
				store:    d.Store,
			},
			editor: d.Editor,
		},
		&timelineStage{
			baseStage: baseStage{
				id:       StageTimeline,
				requires: []artifact.Kind{artifact.DenoisedVideo, artifact.DenoisedAudio, artifact.CleanedTranscript, artifact.EditedVideo},
				produces: []artifact.Kind{artifact.Timeline},
				store:    d.Store,
			},
			generator: d.Timeline,
		},
	}
}

type denoiseStage struct {
	baseStage
	denoiser denoiser.Denoiser
}

func (s *denoiseStage) Run(ctx context.Context, v media.Video, _ Inputs) (Outputs, error) {
	return s.publish(v, func(tmp map[artifact.Kind]string) error {
		return s.denoiser.Denoise(ctx, v.Path, tmp[artifact.DenoisedAudio], tmp[artifact.DenoisedVideo])
	})
}

type transcribeStage struct {
	baseStage
	transcriber transcriber.Transcriber
}

func (s *transcribeStage) Run(ctx context.Context, v media.Video, in Inputs) (Outputs, error) {
	return s.publish(v, func(tmp map[artifact.Kind]string) error {
		return s.transcriber.Transcribe(ctx, in[artifact.DenoisedAudio], tmp[artifact.RawTranscript])
	})
}

type cleanStage struct {
	baseStage
	cleaner cleaner.Cleaner
}

func (s *cleanStage) Run(ctx context.Context, v media.Video, in Inputs) (Outputs, error) {
	raw, err := loadInput(in[artifact.RawTranscript])
	if err != nil {
		return nil, err
	}
	return s.publish(v, func(tmp map[artifact.Kind]string) error {
		cleaned, err := s.cleaner.Clean(ctx, raw)
		if err != nil {
			return err
		}
		return transcript.Write(tmp[artifact.CleanedTranscript], cleaned)
	})
}

type editStage struct {
	baseStage
	editor editor.Editor
}

func (s *editStage) Run(ctx context.Context, v media.Video, in Inputs) (Outputs, error) {
	cleaned, err := loadInput(in[artifact.CleanedTranscript])
	if err != nil {
		return nil, err
	}
	return s.publish(v, func(tmp map[artifact.Kind]string) error {
		return s.editor.Edit(ctx, in[artifact.DenoisedVideo], cleaned.Segments, tmp[artifact.EditedVideo])
	})
}

type timelineStage struct {
	baseStage
	generator timeline.Generator
}

func (s *timelineStage) Run(ctx context.Context, v media.Video, in Inputs) (Outputs, error) {
	cleaned, err := loadInput(in[artifact.CleanedTranscript])
	if err != nil {
		return nil, err
	}
	return s.publish(v, func(tmp map[artifact.Kind]string) error {
		return s.generator.Generate(ctx, timeline.Input{
			Name:          v.ID,
			Transcript:    cleaned,
			SourceVideo:   in[artifact.DenoisedVideo],
			DenoisedAudio: in[artifact.DenoisedAudio],
			EditedVideo:   in[artifact.EditedVideo],
		}, tmp[artifact.Timeline])
	})
}

// loadInput reads a transcript the orchestrator has already validated. A
// failure here means the file changed underneath us.
func loadInput(path string) (transcript.Transcript, error) {
	t, err := transcript.Load(path)
	if err != nil {
		return transcript.Transcript{}, failure.New(failure.MissingDependency, "load input", err)
	}
	return t, nil
}
