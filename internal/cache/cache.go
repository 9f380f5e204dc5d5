// Package cache provides an optional Redis-backed response cache. Cache
// failures are absorbed: a broken cache degrades to a miss, never an error.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	// Get unmarshals the cached value for key into v. Returns false on a
	// miss or any cache failure.
	Get(ctx context.Context, key string, v interface{}) bool
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	Close() error
}

type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisCache(ctx context.Context, addr, password string, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client, logger: logger}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, v interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache delete failed", "keys", keys, "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// RecommendationKey is the cache key for one work order's recommendation,
// scoped by organization.
func RecommendationKey(orgID, workOrderID int64) string {
	return fmt.Sprintf("dispatch:reco:%d:%d", orgID, workOrderID)
}
