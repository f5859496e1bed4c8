package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/m3rciful/giveabot/core/logger"
)

// Client wraps go-redis client to allow future extensions.
type Client struct {
	*redis.Client
}

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	start := time.Now()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		logger.RED.Error("redis connect failed",
			slog.String("event", "redis.connect"),
			slog.String("host", cfg.Addr),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.RED.Info("redis connected",
		slog.String("event", "redis.connect"),
		slog.String("host", cfg.Addr),
		slog.Int("db", cfg.DB),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &Client{Client: c}, nil
}
