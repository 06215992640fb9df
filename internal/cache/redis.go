package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store over a Redis instance, for deployments where
// crawl state should survive the local filesystem. Records carry no TTL:
// "already fetched" is permanent until an operator flushes the keys.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the instance before returning.
func NewRedisStore(redisURL, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) key(key string) string {
	return rs.prefix + key
}

// Exists reports whether a record is present for the key.
func (rs *RedisStore) Exists(ctx context.Context, key string) bool {
	n, err := rs.client.Exists(ctx, rs.key(key)).Result()
	return err == nil && n > 0
}

// Read returns the stored bytes, or ErrNotFound.
func (rs *RedisStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := rs.client.Get(ctx, rs.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache key %s: %w", key, err)
	}
	return data, nil
}

// Write stores the bytes. Redis SET is atomic per key, which satisfies the
// no-partial-record requirement.
func (rs *RedisStore) Write(ctx context.Context, key string, data []byte) error {
	if err := rs.client.Set(ctx, rs.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("write cache key %s: %w", key, err)
	}
	return nil
}
