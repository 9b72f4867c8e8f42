package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "claims:daily:"
	// Keys only need to outlive their own day; the extra day covers timezone skew.
	redisKeyTTL = 48 * time.Hour
)

// RedisCounter keeps counters as plain INCR keys named claims:daily:<day>:<user>.
type RedisCounter struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client, prefix: redisKeyPrefix, ttl: redisKeyTTL}
}

// OpenRedis parses url, connects, and pings once.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *RedisCounter) key(userID, day string) string {
	return c.prefix + day + ":" + userID
}

func (c *RedisCounter) Get(ctx context.Context, userID, day string) (int, error) {
	n, err := c.client.Get(ctx, c.key(userID, day)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *RedisCounter) Increment(ctx context.Context, userID, day string) (int, error) {
	key := c.key(userID, day)
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}
