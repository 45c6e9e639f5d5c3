package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisPingAttempts = 3
	redisPingTimeout  = 3 * time.Second
)

// NewRedisClient connects to the redis used for tactic events and rate
// limiting. Startup retries the ping a few times since redis often comes up
// alongside the API in compose deployments.
func NewRedisClient(ctx context.Context, url string, log *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 2 * time.Second
	}

	client := redis.NewClient(opts)

	var pingErr error
	for attempt := 1; attempt <= redisPingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		pingErr = client.Ping(pingCtx).Err()
		cancel()
		if pingErr == nil {
			break
		}
		log.Warn("redis ping failed", zap.Int("attempt", attempt), zap.Error(pingErr))

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}
	if pingErr != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable after %d attempts: %w", redisPingAttempts, pingErr)
	}

	log.Info("redis connected", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}
