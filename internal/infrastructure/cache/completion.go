package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const completionKeyPrefix = "meeting:processed:"

// CompletionCache remembers conference ids whose processed flag is durably
// true, so repeated is_completed checks skip the database. A miss means
// "ask the database", never "not processed".
type CompletionCache interface {
	IsCompleted(ctx context.Context, conferenceID string) (bool, error)
	MarkCompleted(ctx context.Context, conferenceID string) error
	Forget(ctx context.Context, conferenceID string) error
}

func completionKey(conferenceID string) string {
	return completionKeyPrefix + conferenceID
}

// RedisCompletionCache stores completion marks as expiring Redis keys
type RedisCompletionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCompletionCache wraps an existing Redis client
func NewRedisCompletionCache(client *redis.Client, ttl time.Duration) *RedisCompletionCache {
	return &RedisCompletionCache{client: client, ttl: ttl}
}

func (c *RedisCompletionCache) IsCompleted(ctx context.Context, conferenceID string) (bool, error) {
	err := c.client.Get(ctx, completionKey(conferenceID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	return true, nil
}

func (c *RedisCompletionCache) MarkCompleted(ctx context.Context, conferenceID string) error {
	if err := c.client.Set(ctx, completionKey(conferenceID), "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCompletionCache) Forget(ctx context.Context, conferenceID string) error {
	if err := c.client.Del(ctx, completionKey(conferenceID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
