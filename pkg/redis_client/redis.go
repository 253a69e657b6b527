package redis_client

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/departures-rss/pkg/config"
)

// Connect opens and pings a client for the configured Redis. Callers check cfg.Enabled() first.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	options := &redis.Options{
		Addr: cfg.Address,
		DB:   cfg.Database,
	}

	if cfg.Password != "" {
		options.Password = cfg.Password
	}

	client := redis.NewClient(options)

	statusCmd := client.Ping(ctx)
	if err := statusCmd.Err(); err != nil {
		client.Close()
		return nil, err
	}

	log.Info().Str("address", cfg.Address).Int("database", cfg.Database).Msg("Connected to Redis")

	return client, nil
}
