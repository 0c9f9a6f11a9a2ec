package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries as plain Redis strings with native expiry.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily to the server named by a redis:// URL.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return NewRedisCacheFromClient(redis.NewClient(opts)), nil
}

// NewRedisCacheFromClient wraps an existing client. Close closes the client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if err != nil {
			return redisErr(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data. A ttl of zero never expires.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return redisErr(c.client.Set(ctx, key, data, ttl).Err())
	})
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return redisErr(c.client.Del(ctx, key).Err())
	})
}

func (c *RedisCache) Close() error { return c.client.Close() }

// redisErr marks everything but a miss as a retryable network failure.
func redisErr(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return Retryable(fmt.Errorf("%w: redis: %v", ErrNetwork, err))
}

var _ Cache = (*RedisCache)(nil)
