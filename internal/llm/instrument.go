package llm

import (
	"context"
	"time"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/metrics"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
)

type instrumentedEngine struct {
	base     Engine
	provider string
	now      func() time.Time
}

// WithMetrics records call counts by outcome and latency for every Invoke.
func WithMetrics(base Engine, provider string) Engine {
	return &instrumentedEngine{base: base, provider: provider, now: time.Now}
}

func (e *instrumentedEngine) Invoke(ctx context.Context, prompt string) (string, error) {
	start := e.now()
	out, err := e.base.Invoke(ctx, prompt)
	elapsed := e.now().Sub(start)
	metrics.ObserveEngineCall(e.provider, outcome(err), elapsed.Seconds())
	if err != nil {
		telemetry.Warn("engine.call_failed", map[string]any{
			"provider":   e.provider,
			"latency_ms": elapsed.Milliseconds(),
			"error":      err,
		})
	}
	return out, err
}
