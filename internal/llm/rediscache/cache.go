// Package rediscache stores engine replies in Redis.
package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
)

// Options configures NewClient.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient builds a Redis client and verifies the connection.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrap(err, "redis ping failed")
	}
	return rdb, nil
}

// Cache implements llm.Cache.
type Cache struct {
	client *redis.Client
}

// New wraps an existing client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the cached value. A missing key is not an error.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "redis get %s", key)
	}
	return val, true, nil
}

// Set stores value under key for ttl. A zero ttl keeps the key forever.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return eris.Wrapf(err, "redis set %s", key)
	}
	return nil
}

var _ llm.Cache = (*Cache)(nil)
