package llm

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/edit-flow/internal/failure"
	"github.com/nguyentantai21042004/edit-flow/internal/logger"
)

// Policy bounds retries of transient LLM failures.
type Policy struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// Delay returns the wait before retry n (0-based): Backoff * 2^n, capped at MaxBackoff.
func (p Policy) Delay(n int) time.Duration {
	d := p.Backoff
	for i := 0; i < n; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

type retryClient struct {
	next   Client
	policy Policy
	logger logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps c so timeouts and unreachable errors are retried up to
// policy.MaxRetries times. Other failures are returned immediately.
func WithRetry(c Client, policy Policy, log logger.Logger) Client {
	return &retryClient{
		next:   c,
		policy: policy,
		logger: log,
		sleep:  sleepCtx,
	}
}

func (r *retryClient) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := r.do(ctx, "generate", func() error {
		var err error
		out, err = r.next.Generate(ctx, prompt)
		return err
	})
	return out, err
}

func (r *retryClient) Available(ctx context.Context) error {
	return r.do(ctx, "availability check", func() error {
		return r.next.Available(ctx)
	})
}

func (r *retryClient) do(ctx context.Context, what string, call func() error) error {
	for attempt := 0; ; attempt++ {
		err := call()
		if err == nil {
			if attempt > 0 {
				r.logger.Info(ctx, "LLM %s succeeded after %d retries", what, attempt)
			}
			return nil
		}
		if !failure.Retryable(err) || attempt >= r.policy.MaxRetries || ctx.Err() != nil {
			return err
		}

		d := r.policy.Delay(attempt)
		r.logger.Warn(ctx, "LLM %s failed (attempt %d/%d), retrying in %s: %v",
			what, attempt+1, r.policy.MaxRetries+1, d, err)
		if serr := r.sleep(ctx, d); serr != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
