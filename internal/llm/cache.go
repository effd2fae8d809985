package llm

import (
	"context"
	"time"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/metrics"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/telemetry"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/util"
)

// Cache stores raw engine replies by key.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

const cacheKeyPrefix = "exporo:engine:"

// CacheKey returns the cache key for a prompt.
func CacheKey(prompt string) string {
	return cacheKeyPrefix + util.Hash(prompt)
}

type cachingEngine struct {
	base  Engine
	cache Cache
	ttl   time.Duration
}

// WithCache serves repeated prompts from cache. Cache failures fall through
// to base; engine errors are never cached.
func WithCache(base Engine, cache Cache, ttl time.Duration) Engine {
	if cache == nil {
		return base
	}
	return &cachingEngine{base: base, cache: cache, ttl: ttl}
}

func (e *cachingEngine) Invoke(ctx context.Context, prompt string) (string, error) {
	key := CacheKey(prompt)
	if cached, ok, err := e.cache.Get(ctx, key); err != nil {
		metrics.IncCacheLookup("error")
		telemetry.Warn("engine.cache_get_failed", map[string]any{"error": err})
	} else if ok {
		metrics.IncCacheLookup("hit")
		return cached, nil
	} else {
		metrics.IncCacheLookup("miss")
	}

	out, err := e.base.Invoke(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := e.cache.Set(ctx, key, out, e.ttl); err != nil {
		telemetry.Warn("engine.cache_set_failed", map[string]any{"error": err})
	}
	return out, nil
}
