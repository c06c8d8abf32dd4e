package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-processor/pkg/config"
)

// NewRedisClient connects to Redis, retrying the initial ping with
// exponential backoff for up to a minute.
func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Minute

	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}
	notify := func(err error, wait time.Duration) {
		if logger != nil {
			logger.Warn("⏳ redis not ready, retrying", zap.Error(err), zap.Duration("wait", wait))
		}
	}

	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if logger != nil {
		logger.Info("✅ Redis connected", zap.String("addr", cfg.GetRedisAddr()))
	}
	return client, nil
}
