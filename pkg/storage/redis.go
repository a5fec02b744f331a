package storage

import (
	"context"
	"fmt"
	"time"

	"fueltrack-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisBackend implements Backend on a Redis instance. An optional key
// prefix namespaces the tracker's keys inside a shared database.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend wraps an existing Redis client.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
	}
}

// NewRedisClient builds a Redis client from configuration, preferring a
// full URL over host:port, and verifies connectivity with a ping.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	var opt *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection test failed: %w", err)
	}

	return client, nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.buildKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return value, nil
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	// No TTL: persisted collections live until removed.
	if err := r.client.Set(ctx, r.buildKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s from redis: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) buildKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + key
}
