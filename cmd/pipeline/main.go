package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/nguyentantai21042004/edit-flow/internal/artifact"
	"github.com/nguyentantai21042004/edit-flow/internal/cleaner"
	"github.com/nguyentantai21042004/edit-flow/internal/config"
	"github.com/nguyentantai21042004/edit-flow/internal/denoiser"
	"github.com/nguyentantai21042004/edit-flow/internal/editor"
	"github.com/nguyentantai21042004/edit-flow/internal/export"
	"github.com/nguyentantai21042004/edit-flow/internal/llm"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/internal/media"
	"github.com/nguyentantai21042004/edit-flow/internal/pipeline"
	"github.com/nguyentantai21042004/edit-flow/internal/probe"
	"github.com/nguyentantai21042004/edit-flow/internal/runlog"
	"github.com/nguyentantai21042004/edit-flow/internal/timeline"
	"github.com/nguyentantai21042004/edit-flow/internal/transcriber"
	"github.com/nguyentantai21042004/edit-flow/internal/watcher"
	"github.com/nguyentantai21042004/edit-flow/pkg/executor"
)

const (
	exitFailed = 1
	exitUsage  = 2
)

type options struct {
	configPath string
	outputDir  string
	logDir     string
	modelPath  string
	workers    int
	watch      bool
	status     bool
	input      string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}

	if opts.status {
		records, err := runlog.Read(cfg.Paths.Logs)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read run log: %v\n", err)
			return exitFailed
		}
		if err := pipeline.WriteStatus(stdout, records); err != nil {
			return exitFailed
		}
		return 0
	}

	videos, err := media.Discover(opts.input)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to find videos: %v\n", err)
		return exitUsage
	}
	if opts.watch {
		if info, err := os.Stat(opts.input); err != nil || !info.IsDir() {
			fmt.Fprintln(stderr, "-watch needs a directory")
			return exitUsage
		}
	}

	ctx := context.Background()
	log, closer, err := logger.NewFile(cfg.Logging.Level, cfg.Paths.Logs)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open log: %v\n", err)
		return exitFailed
	}
	defer closer.Close()

	runID := uuid.NewString()
	log.Info(ctx, "========================================")
	log.Info(ctx, "Video Edit Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Run ID: %s", runID)
	log.Info(ctx, "Input: %s (%d videos)", opts.input, len(videos))
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "LLM: %s %s (%s mode)", cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.Mode)
	log.Info(ctx, "Max concurrent videos: %d", cfg.Performance.MaxConcurrent)

	records, err := runlog.Read(cfg.Paths.Logs)
	if err != nil {
		log.Warn(ctx, "Ignoring unreadable run log: %v", err)
	}
	history := runlog.Progress(records)
	for video, stage := range runlog.Interrupted(records) {
		log.Warn(ctx, "Previous run stopped during %s/%s; it will be re-checked", video, stage)
	}

	recorder, err := runlog.Open(cfg.Paths.Logs)
	if err != nil {
		log.Error(ctx, "Failed to open run log: %v", err)
		return exitFailed
	}
	defer recorder.Close()

	store := artifact.New(cfg.Paths.Output)
	if n, err := store.SweepPartials(); err != nil {
		log.Warn(ctx, "Failed to remove partial files: %v", err)
	} else if n > 0 {
		log.Info(ctx, "Removed %d partial files from an earlier run", n)
	}

	orch, err := buildOrchestrator(cfg, store, recorder, history, runID, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		return exitUsage
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopSignals := handleSignals(ctx, cancel, log)
	defer stopSignals()

	runner := pipeline.NewRunner(orch, cfg.Performance.MaxConcurrent, log)
	summary := runner.Run(ctx, videos)
	summary.Write(stdout)

	if opts.watch && ctx.Err() == nil {
		if err := watch(ctx, opts.input, orch, cfg, log); err != nil {
			log.Error(ctx, "Watcher error: %v", err)
			return exitFailed
		}
	}

	if err := recorder.Sync(); err != nil {
		log.Warn(ctx, "Failed to sync run log: %v", err)
	}
	if !summary.OK() {
		return exitFailed
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: pipeline [flags] <video-or-directory>")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "config.yaml", "config file (optional)")
	fs.StringVar(&opts.outputDir, "output-dir", "", "artifact output directory")
	fs.StringVar(&opts.logDir, "log-dir", "", "directory for pipeline.log and runs.jsonl")
	fs.StringVar(&opts.modelPath, "model-path", "", "arnndn noise model")
	fs.IntVar(&opts.workers, "workers", 0, "videos processed at once")
	fs.BoolVar(&opts.watch, "watch", false, "keep processing new videos added to the input directory")
	fs.BoolVar(&opts.status, "status", false, "print progress recorded in the run log and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.status {
		return opts, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected exactly one input path, got %d", fs.NArg())
	}
	opts.input = fs.Arg(0)
	if opts.workers < 0 {
		return opts, fmt.Errorf("-workers must not be negative")
	}
	return opts, nil
}

// loadConfig layers defaults, the YAML file, .env and the environment, then flags.
func loadConfig(opts options) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if opts.outputDir != "" {
		cfg.Paths.Output = opts.outputDir
	}
	if opts.logDir != "" {
		cfg.Paths.Logs = opts.logDir
	}
	if opts.modelPath != "" {
		cfg.Denoise.ModelPath = opts.modelPath
	}
	if opts.workers > 0 {
		cfg.Performance.MaxConcurrent = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func buildOrchestrator(cfg *config.Config, store *artifact.Store, rec runlog.Recorder, history runlog.History, runID string, log logger.Logger) (*pipeline.Orchestrator, error) {
	exec := executor.New()

	client, err := llm.New(cfg.LLM, log)
	if err != nil {
		return nil, err
	}
	cl, err := cleaner.New(client, cfg.LLM.Mode, log)
	if err != nil {
		return nil, err
	}

	prober := probe.New(exec, cfg.FFmpeg.ProbeBinary, cfg.Tools.Timeout())
	stages := pipeline.NewStages(pipeline.Deps{
		Store:       store,
		Denoiser:    denoiser.New(cfg, exec, log),
		Transcriber: transcriber.New(cfg, exec, log),
		Cleaner:     cl,
		Editor:      editor.New(cfg, exec, log),
		Timeline:    timeline.New(prober, log),
	})

	var exp export.Exporter
	if cfg.Export.Docx {
		exp = export.New(filepath.Join(cfg.Paths.Output, "documents"), log)
	}

	return pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Stages:   stages,
		Store:    store,
		Recorder: rec,
		Logger:   log,
		RunID:    runID,
		History:  history,
		Exporter: exp,
	}), nil
}

// handleSignals cancels ctx on the first SIGINT/SIGTERM so no new video is
// started. A second signal exits immediately.
func handleSignals(ctx context.Context, cancel context.CancelFunc, log logger.Logger) func() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigChan:
		case <-done:
			return
		}
		log.Warn(ctx, "Shutdown signal received, finishing videos in progress (press Ctrl+C again to abort)")
		cancel()

		select {
		case <-sigChan:
			log.Error(ctx, "Second signal received, aborting")
			os.Exit(130)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// watch processes videos added to dir until ctx is cancelled.
func watch(ctx context.Context, dir string, proc pipeline.Processor, cfg *config.Config, log logger.Logger) error {
	handler := func(ctx context.Context, path string) error {
		v, err := media.Lookup(dir, path)
		if err != nil {
			return err
		}
		res := proc.Process(context.WithoutCancel(ctx), v)
		if res.Status != pipeline.StatusCompleted {
			return fmt.Errorf("%s failed at %s: %w", v.ID, res.FailedStage, res.Err)
		}
		return nil
	}

	w, err := watcher.New(dir, handler, log, cfg.Performance.MaxConcurrent, 0)
	if err != nil {
		return err
	}
	defer w.Stop()

	log.Info(ctx, "Press Ctrl+C to stop watching")
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
