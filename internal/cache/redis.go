package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

// RedisCache implements Cache on a Redis server, storing batches as JSON under
// the same key prefix as MemcachedCache.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache for addr ("host:port"). The connection is
// opened lazily; call Ping to verify it.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get implements Cache.Get. Returns false, nil on miss.
func (c *RedisCache) Get(ctx context.Context, key string) (models.ForecastBatch, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ForecastBatch{}, false, nil
	}
	if err != nil {
		return models.ForecastBatch{}, false, err
	}
	var batch models.ForecastBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return models.ForecastBatch{}, false, err
	}
	return batch, true, nil
}

// Set implements Cache.Set.
func (c *RedisCache) Set(ctx context.Context, key string, value models.ForecastBatch, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, data, ttl).Err()
}

// Ping checks if redis is reachable. Used for health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client's connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
