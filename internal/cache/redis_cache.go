// Package cache provides the Redis-backed cache for due-card listings
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// dueCardsNamespace prefixes every due-card listing key
const dueCardsNamespace = "due_cards"

// scanBatchSize is the COUNT hint passed to SCAN while invalidating
const scanBatchSize = 100

// redisClient is the subset of *redis.Client used by RedisCache
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisCache stores string values in Redis
type RedisCache struct {
	client redisClient
}

// NewRedisCache creates a cache on top of a Redis client
func NewRedisCache(client redisClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the value stored under key. The boolean is false on a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key for ttl
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix
//
// Keys are discovered with SCAN so Redis is never blocked by KEYS.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys %s*: %w", prefix, err)
		}
		if err := c.Delete(ctx, keys...); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// DueCardsPrefix returns the key prefix shared by all due-card listings of a user
func DueCardsPrefix(userID int) string {
	return fmt.Sprintf("%s:%d:", dueCardsNamespace, userID)
}

// DueCardsKey returns the key of one due-card listing
//
// The filter parts are hashed so that keys stay short whatever the filter.
func DueCardsKey(userID, limit int, filter ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(filter, "|")))
	return fmt.Sprintf("%s%d:%s", DueCardsPrefix(userID), limit, hex.EncodeToString(sum[:8]))
}
