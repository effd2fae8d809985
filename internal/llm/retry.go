package llm

import (
	"context"
	"errors"
	"time"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/metrics"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/middleware"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

// DefaultRetryDelay is the pause before the single retry.
const DefaultRetryDelay = 300 * time.Millisecond

// RetryOptions configures WithRetry.
type RetryOptions struct {
	Provider string
	// AttemptTimeout bounds each attempt. Zero leaves the caller's deadline alone.
	AttemptTimeout time.Duration
	Delay          time.Duration
}

type retryingEngine struct {
	base Engine
	opts RetryOptions
}

// WithRetry classifies base's failures and retries once on
// ErrEngineTimeout or ErrEngineUnavailable. A second failure is returned.
func WithRetry(base Engine, opts RetryOptions) Engine {
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	return &retryingEngine{base: base, opts: opts}
}

func (r *retryingEngine) Invoke(ctx context.Context, prompt string) (string, error) {
	out, err := r.attempt(ctx, prompt)
	if err == nil || !IsRetryable(err) {
		return out, err
	}
	if ctx.Err() != nil {
		return "", err
	}

	reason := outcome(err)
	metrics.IncEngineRetry(reason)
	telemetry.Warn("engine.retry", map[string]any{
		"provider":   r.opts.Provider,
		"attempt":    1,
		"reason":     reason,
		"request_id": middleware.RequestIDFrom(ctx),
		"error":      err,
	})

	timer := time.NewTimer(r.opts.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return "", Classify(r.opts.Provider, ctx.Err())
	}
	return r.attempt(ctx, prompt)
}

func (r *retryingEngine) attempt(ctx context.Context, prompt string) (string, error) {
	attemptCtx := ctx
	if r.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.opts.AttemptTimeout)
		defer cancel()
	}
	out, err := r.base.Invoke(attemptCtx, prompt)
	if err == nil {
		return out, nil
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", Timeout(r.opts.Provider, err)
	}
	return "", Classify(r.opts.Provider, err)
}
