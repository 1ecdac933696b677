package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowi-ledger/internal/config"
	"github.com/redis/go-redis/v9"
)

// Redis wraps the client of the key-value obligation store
type Redis struct {
	logger *slog.Logger
	client *redis.Client
	prefix string
}

// NewRedis parses the URL, connects and validates connectivity
func NewRedis(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis", "db", opts.DB, "key_prefix", cfg.KeyPrefix)

	return &Redis{logger: logger, client: client, prefix: cfg.KeyPrefix}, nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

// KeyPrefix namespaces every key this application writes
func (r *Redis) KeyPrefix() string {
	return r.prefix
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	r.logger.Info("Closed Redis connection")
	return nil
}
