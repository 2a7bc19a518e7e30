// Package cache is a thin JSON cache over Redis used to absorb repeated
// current-weather requests between collection runs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/metrics"
)

// ErrMiss is returned when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis client with a fixed TTL and key prefix.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Cache with the given default entry lifetime.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func key(location string) string {
	return fmt.Sprintf("weather:%s", location)
}

// GetJSON loads the cached value for a location into dest. A missing or
// expired entry returns ErrMiss; Redis being down is a real error so the
// caller can decide whether to serve uncached.
func (c *Cache) GetJSON(ctx context.Context, location string, dest interface{}) error {
	data, err := c.client.Get(ctx, key(location)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(false)
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache for %s: %w", location, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry behaves like a miss so it gets overwritten.
		metrics.RecordCacheLookup(false)
		return ErrMiss
	}

	metrics.RecordCacheLookup(true)
	return nil
}

// SetJSON stores a value for a location under the default TTL.
func (c *Cache) SetJSON(ctx context.Context, location string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize cache entry for %s: %w", location, err)
	}

	if err := c.client.Set(ctx, key(location), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache for %s: %w", location, err)
	}
	return nil
}

// Invalidate drops the entry for one location.
func (c *Cache) Invalidate(ctx context.Context, location string) error {
	if err := c.client.Del(ctx, key(location)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache for %s: %w", location, err)
	}
	return nil
}

// Flush removes every cached weather entry.
func (c *Cache) Flush(ctx context.Context) (int64, error) {
	keys, err := c.client.Keys(ctx, "weather:*").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to flush cache: %w", err)
	}
	return deleted, nil
}
