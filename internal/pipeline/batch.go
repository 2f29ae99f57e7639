package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/edit-flow/internal/logger"
	"github.com/nguyentantai21042004/edit-flow/internal/media"
)

// Runner processes a batch of videos on a bounded worker pool. A failed
// video never stops the others.
type Runner struct {
	proc    Processor
	workers int
	logger  logger.Logger
}

// NewRunner creates a Runner with at most workers videos in flight.
func NewRunner(proc Processor, workers int, log logger.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{proc: proc, workers: workers, logger: log}
}

// RunPath discovers the videos under input (a file or a directory) and runs them.
func (r *Runner) RunPath(ctx context.Context, input string) (Summary, error) {
	videos, err := media.Discover(input)
	if err != nil {
		return Summary{}, err
	}
	return r.Run(ctx, videos), nil
}

// Run processes videos and returns one result per video, in input order.
// Cancelling ctx stops new videos from being dispatched; videos already in
// flight run to completion on a context detached from the cancellation so
// their artifacts and run records stay consistent. Undispatched videos are
// reported as interrupted.
func (r *Runner) Run(ctx context.Context, videos []media.Video) Summary {
	start := time.Now()
	results := make([]VideoResult, len(videos))
	sem := newSemaphore(r.workers)
	var wg sync.WaitGroup

	r.logger.Info(ctx, "Processing %d videos with %d workers", len(videos), r.workers)

	for i, v := range videos {
		if err := sem.acquire(ctx); err != nil {
			r.logger.Warn(ctx, "Run interrupted, %d videos not started", len(videos)-i)
			for j := i; j < len(videos); j++ {
				results[j] = VideoResult{Video: videos[j], Status: StatusInterrupted, Err: ErrInterrupted}
			}
			break
		}

		wg.Add(1)
		go func(i int, v media.Video) {
			defer wg.Done()
			defer sem.release()
			results[i] = r.proc.Process(context.WithoutCancel(ctx), v)
		}(i, v)
	}

	wg.Wait()
	return Summary{Results: results, Elapsed: time.Since(start)}
}
