package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/edit-flow/internal/artifact"
	"github.com/nguyentantai21042004/edit-flow/internal/export"
	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/internal/media"
	"github.com/nguyentantai21042004/edit-flow/internal/runlog"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// Status is the final state of one video in a run.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// VideoResult is what happened to one video.
type VideoResult struct {
	Video       media.Video
	Status      Status
	FailedStage StageID
	Err         error
	Ran         []StageID
	Skipped     []StageID
	Duration    time.Duration
}

// Kind returns the failure kind of a failed video, or "".
func (r VideoResult) Kind() failure.Kind {
	return failure.KindOf(r.Err)
}

// Processor runs the pipeline for a single video.
type Processor interface {
	Process(ctx context.Context, v media.Video) VideoResult
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Stages   []Stage
	Store    *artifact.Store
	Recorder runlog.Recorder
	Logger   logger.Logger
	RunID    string
	// History is the progress reconstructed from earlier runs. It is only
	// used to flag artifacts that have gone bad since they were recorded.
	History runlog.History
	// Exporter, when set, renders the cleaned transcript of each completed video.
	Exporter export.Exporter
}

// Orchestrator walks the stage list for one video at a time. It is safe
// for concurrent use by multiple videos.
type Orchestrator struct {
	cfg OrchestratorConfig
	now func() time.Time
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Orchestrator{cfg: cfg, now: time.Now}
}

// Process runs every unsatisfied stage of v in order. The first failure is
// recorded and ends the video's pipeline; nothing after it is attempted.
func (o *Orchestrator) Process(ctx context.Context, v media.Video) VideoResult {
	log := o.cfg.Logger
	start := o.now()
	res := VideoResult{Video: v}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Processing %s (id %s)", v.Path, v.ID)

	for _, st := range o.cfg.Stages {
		if st.IsSatisfied(v) {
			log.Info(ctx, "[%s] %s: output present, skipping", v.ID, st.ID())
			o.record(ctx, v, st.ID(), runlog.Skipped, 0, nil, o.outputs(st, v))
			res.Skipped = append(res.Skipped, st.ID())
			continue
		}

		if prev, ok := o.cfg.History.Last(v.ID, st.ID().String()); ok && prev.Outcome != runlog.Failure {
			log.Warn(ctx, "[%s] %s: run log says %s but the artifact is missing or invalid, re-running",
				v.ID, st.ID(), prev.Outcome)
		}

		in, err := o.gather(st, v)
		if err != nil {
			o.fail(ctx, &res, st.ID(), 0, err)
			break
		}

		log.Info(ctx, "[%s] %s: running", v.ID, st.ID())
		o.record(ctx, v, st.ID(), runlog.Started, 0, nil, nil)

		t0 := o.now()
		out, err := st.Run(ctx, v, in)
		if err == nil {
			err = o.verify(st, v)
		}
		elapsed := o.now().Sub(t0)

		if err != nil {
			o.fail(ctx, &res, st.ID(), elapsed, err)
			break
		}

		log.Info(ctx, "[%s] %s: done in %s", v.ID, st.ID(), elapsed.Round(time.Millisecond))
		o.record(ctx, v, st.ID(), runlog.Success, elapsed, nil, paths(out))
		res.Ran = append(res.Ran, st.ID())
	}

	if res.Status == "" {
		res.Status = StatusCompleted
		o.export(ctx, v)
	}
	res.Duration = o.now().Sub(start)

	if res.Status == StatusCompleted {
		log.Info(ctx, "[%s] completed in %s (%d ran, %d skipped)",
			v.ID, res.Duration.Round(time.Millisecond), len(res.Ran), len(res.Skipped))
	}
	return res
}

// gather collects the canonical paths of the stage's required inputs and
// checks each one is present and valid.
func (o *Orchestrator) gather(st Stage, v media.Video) (Inputs, error) {
	in := make(Inputs, len(st.Requires()))
	for _, k := range st.Requires() {
		if err := o.cfg.Store.Check(k, v.ID); err != nil {
			return nil, failure.New(failure.MissingDependency, fmt.Sprintf("input %s", k), err)
		}
		in[k] = o.cfg.Store.Path(k, v.ID)
	}
	return in, nil
}

// verify re-checks every output after a successful run.
func (o *Orchestrator) verify(st Stage, v media.Video) error {
	for _, k := range st.Produces() {
		if err := o.cfg.Store.Check(k, v.ID); err != nil {
			return failure.New(failure.ArtifactValidation, fmt.Sprintf("output %s", k), err)
		}
	}
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, res *VideoResult, id StageID, elapsed time.Duration, err error) {
	f := failure.Ensure(err, id.String(), failure.DependencyUnreachable)
	o.cfg.Logger.Error(ctx, "[%s] %s failed (%s): %v", res.Video.ID, id, f.Kind, f)
	o.record(ctx, res.Video, id, runlog.Failure, elapsed, f, nil)
	res.Status = StatusFailed
	res.FailedStage = id
	res.Err = f
}

func (o *Orchestrator) record(ctx context.Context, v media.Video, id StageID, outcome runlog.Outcome, elapsed time.Duration, f *failure.Failure, outputs []string) {
	if o.cfg.Recorder == nil {
		return
	}
	r := runlog.Record{
		RunID:      o.cfg.RunID,
		Video:      v.ID,
		Source:     v.Path,
		Stage:      id.String(),
		Outcome:    outcome,
		Timestamp:  o.now().UTC(),
		DurationMS: elapsed.Milliseconds(),
		Outputs:    outputs,
	}
	if f != nil {
		r.Error = f.Error()
		r.ErrorKind = string(f.Kind)
	}
	if err := o.cfg.Recorder.Append(r); err != nil {
		o.cfg.Logger.Error(ctx, "Failed to write run record for %s/%s: %v", v.ID, id, err)
	}
}

func (o *Orchestrator) outputs(st Stage, v media.Video) []string {
	out := make([]string, 0, len(st.Produces()))
	for _, k := range st.Produces() {
		out = append(out, o.cfg.Store.Path(k, v.ID))
	}
	return out
}

// export is best effort: a completed video stays completed if the
// document cannot be written.
func (o *Orchestrator) export(ctx context.Context, v media.Video) {
	if o.cfg.Exporter == nil {
		return
	}
	t, err := transcript.Load(o.cfg.Store.Path(artifact.CleanedTranscript, v.ID))
	if err == nil {
		_, err = o.cfg.Exporter.Export(ctx, v.ID, t)
	}
	if err != nil {
		o.cfg.Logger.Warn(ctx, "[%s] transcript export failed: %v", v.ID, err)
	}
}

func paths(out Outputs) []string {
	var ps []string
	for _, k := range artifact.Kinds() {
		if p, ok := out[k]; ok {
			ps = append(ps, p)
		}
	}
	return ps
}

// ErrInterrupted marks videos that were never dispatched because the run was cancelled.
var ErrInterrupted = errors.New("run interrupted before this video started")
