package chat

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "completion:"

// Cache is an optional redis-backed response cache. Keys digest the query,
// the media bytes, and the sampling and partition parameters, so an entry is
// replayed only for requests that decode to the same model input; under
// greedy decoding that input fully determines the output. A nil *Cache
// disables caching.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redisClient *redis.Client, ttl time.Duration) *Cache {
	if redisClient == nil || ttl <= 0 {
		return nil
	}
	return &Cache{redis: redisClient, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.redis.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	if c == nil {
		return nil
	}
	return c.redis.Set(ctx, cacheKeyPrefix+key, value, c.ttl).Err()
}
