package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// ContentCache is a thin keyed blob cache for rendered pages and catalog
// fragments. TTL is injected so callers decide staleness per content kind.
type ContentCache struct {
	cli RedisClient
	ttl time.Duration
	log *zerolog.Logger
}

func NewContentCache(cli RedisClient, ttl time.Duration, log *zerolog.Logger) *ContentCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	l := log.With().Str("component", "content_cache").Logger()
	return &ContentCache{cli: cli, ttl: ttl, log: &l}
}

// Get returns the cached blob, or ("", false) on miss or Redis failure.
func (c *ContentCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.cli.Get(ctx, key)
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return "", false
	}
	return val, true
}

func (c *ContentCache) Set(ctx context.Context, key, value string) {
	if err := c.cli.Set(ctx, key, value, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (c *ContentCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.cli.Del(ctx, keys...); err != nil {
		c.log.Warn().Err(err).Msg("cache invalidate failed")
	}
}
