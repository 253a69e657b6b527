package transportrest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// StopoverCache stores the full stopover list of a trip.
// Lookups never fail, a broken cache behaves like an empty one.
type StopoverCache interface {
	Get(ctx context.Context, tripID string) ([]Stopover, bool)
	Set(ctx context.Context, tripID string, stopovers []Stopover)
}

type RedisStopoverCache struct {
	Cache *cache.Cache[string]
}

func NewRedisStopoverCache(client *redis.Client, expiration time.Duration) *RedisStopoverCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &RedisStopoverCache{
		Cache: cache.New[string](redisStore),
	}
}

func (c *RedisStopoverCache) Get(ctx context.Context, tripID string) ([]Stopover, bool) {
	cached, err := c.Cache.Get(ctx, cacheKey(tripID))
	if err != nil {
		return nil, false
	}

	var stopovers []Stopover
	if err := json.Unmarshal([]byte(cached), &stopovers); err != nil {
		log.Warn().Err(err).Str("tripid", tripID).Msg("Discarding unreadable cached stopovers")
		return nil, false
	}

	return stopovers, true
}

func (c *RedisStopoverCache) Set(ctx context.Context, tripID string, stopovers []Stopover) {
	encoded, err := json.Marshal(stopovers)
	if err != nil {
		return
	}

	if err := c.Cache.Set(ctx, cacheKey(tripID), string(encoded)); err != nil {
		log.Warn().Err(err).Str("tripid", tripID).Msg("Failed to cache stopovers")
	}
}

func cacheKey(tripID string) string {
	return "departures-rss:stopovers:" + tripID
}
