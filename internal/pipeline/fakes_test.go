package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/edit-flow/internal/artifact"
	"github.com/nguyentantai21042004/edit-flow/internal/artifact/artifacttest"
	"github.com/nguyentantai21042004/edit-flow/internal/cleaner"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/internal/media"
	"github.com/nguyentantai21042004/edit-flow/internal/probe"
	"github.com/nguyentantai21042004/edit-flow/internal/runlog"
	"github.com/nguyentantai21042004/edit-flow/internal/timeline"
	"github.com/nguyentantai21042004/edit-flow/internal/transcript"
)

// calls counts adapter invocations per stage.
type calls struct {
	mu sync.Mutex
	n  map[StageID]int
}

func (c *calls) inc(s StageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = map[StageID]int{}
	}
	c.n[s]++
}

func (c *calls) get(s StageID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[s]
}

func (c *calls) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := 0
	for _, n := range c.n {
		sum += n
	}
	return sum
}

type fakeDenoiser struct {
	calls *calls
	err   func(videoPath string) error
}

func (f *fakeDenoiser) Denoise(ctx context.Context, videoPath, audioOut, videoOut string) error {
	f.calls.inc(StageDenoise)
	if f.err != nil {
		if err := f.err(videoPath); err != nil {
			return err
		}
	}
	if err := artifacttest.WriteWAV(audioOut); err != nil {
		return err
	}
	return artifacttest.WriteMP4(videoOut, "source="+videoPath)
}

type fakeTranscriber struct {
	calls   *calls
	err     error
	garbage bool
	audio   []string
	mu      sync.Mutex
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, outPath string) error {
	f.calls.inc(StageTranscribe)
	f.mu.Lock()
	f.audio = append(f.audio, audioPath)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.garbage {
		return os.WriteFile(outPath, []byte(`{"segments":[]}`), 0644)
	}
	return artifacttest.WriteTranscript(outPath)
}

type fakeCleaner struct {
	calls *calls
	err   error
}

func (f *fakeCleaner) Clean(ctx context.Context, raw transcript.Transcript) (transcript.Transcript, error) {
	f.calls.inc(StageClean)
	if f.err != nil {
		return transcript.Transcript{}, f.err
	}
	return raw, nil
}

type fakeEditor struct {
	calls *calls
}

func (f *fakeEditor) Edit(ctx context.Context, videoPath string, segments []transcript.Segment, outPath string) error {
	f.calls.inc(StageEditSegments)
	return artifacttest.WriteMP4(outPath, "from="+videoPath)
}

type countingGenerator struct {
	calls *calls
	next  timeline.Generator
}

func (g *countingGenerator) Generate(ctx context.Context, in timeline.Input, outPath string) error {
	g.calls.inc(StageTimeline)
	return g.next.Generate(ctx, in, outPath)
}

type fakeProber struct{}

func (fakeProber) Probe(ctx context.Context, path string) (*probe.Info, error) {
	return &probe.Info{Width: 1920, Height: 1080, FrameNum: 25, FrameDen: 1}, nil
}

type memRecorder struct {
	mu      sync.Mutex
	records []runlog.Record
}

func (m *memRecorder) Append(r runlog.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memRecorder) all() []runlog.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]runlog.Record(nil), m.records...)
}

func (m *memRecorder) find(video string, stage StageID, outcome runlog.Outcome) []runlog.Record {
	var out []runlog.Record
	for _, r := range m.all() {
		if r.Video == video && r.Stage == stage.String() && r.Outcome == outcome {
			out = append(out, r)
		}
	}
	return out
}

type harness struct {
	dir         string
	store       *artifact.Store
	calls       *calls
	denoiser    *fakeDenoiser
	transcriber *fakeTranscriber
	cleaner     cleaner.Cleaner
	editor      *fakeEditor
	recorder    *memRecorder
	history     runlog.History
	logger      logger.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	c := &calls{}
	return &harness{
		dir:         dir,
		store:       artifact.New(filepath.Join(dir, "output")),
		calls:       c,
		denoiser:    &fakeDenoiser{calls: c},
		transcriber: &fakeTranscriber{calls: c},
		cleaner:     &fakeCleaner{calls: c},
		editor:      &fakeEditor{calls: c},
		recorder:    &memRecorder{},
		logger:      logger.Nop(),
	}
}

func (h *harness) stages() []Stage {
	return NewStages(Deps{
		Store:       h.store,
		Denoiser:    h.denoiser,
		Transcriber: h.transcriber,
		Cleaner:     h.cleaner,
		Editor:      h.editor,
		Timeline:    &countingGenerator{calls: h.calls, next: timeline.New(fakeProber{}, logger.Nop())},
	})
}

func (h *harness) orchestrator() *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		Stages:   h.stages(),
		Store:    h.store,
		Recorder: h.recorder,
		Logger:   h.logger,
		RunID:    "test-run",
		History:  h.history,
	})
}

// video creates an input file so discovery and the fakes have a real path.
func (h *harness) video(t *testing.T, name string) media.Video {
	t.Helper()
	p := filepath.Join(h.dir, "input", name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := artifacttest.WriteMP4(p, name); err != nil {
		t.Fatal(err)
	}
	return media.NewVideo(p)
}
