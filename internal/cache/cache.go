package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

// LatestKey is the key under which the most recent batch is also stored.
const LatestKey = "latest"

// Cache defines the interface for forecast batch storage implementations.
// Get returns the batch if present and not expired, Set stores it with TTL.
type Cache interface {
	Get(ctx context.Context, key string) (models.ForecastBatch, bool, error)
	Set(ctx context.Context, key string, value models.ForecastBatch, ttl time.Duration) error
}

// InMemoryCache implements Cache using a map with TTL-based expiration.
// Expired entries are removed on access. Safe for concurrent use.
type InMemoryCache struct {
	mu    sync.Mutex
	clock clockwork.Clock
	data  map[string]cacheEntry
}

type cacheEntry struct {
	value     models.ForecastBatch
	expiresAt time.Time
}

// NewInMemoryCache creates an in-memory cache on the wall clock.
func NewInMemoryCache() *InMemoryCache {
	return NewInMemoryCacheWithClock(clockwork.NewRealClock())
}

// NewInMemoryCacheWithClock creates an in-memory cache that reads time from clock.
func NewInMemoryCacheWithClock(clock clockwork.Clock) *InMemoryCache {
	return &InMemoryCache{
		clock: clock,
		data:  make(map[string]cacheEntry),
	}
}

// Get returns (batch, true, nil) on hit and (zero, false, nil) on miss or expiration.
func (c *InMemoryCache) Get(ctx context.Context, key string) (models.ForecastBatch, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return models.ForecastBatch{}, false, nil
	}
	if c.clock.Now().After(entry.expiresAt) {
		delete(c.data, key)
		return models.ForecastBatch{}, false, nil
	}
	return entry.value, true, nil
}

// Set stores the batch; it expires after ttl and is removed on the next Get.
func (c *InMemoryCache) Set(ctx context.Context, key string, value models.ForecastBatch, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
	return nil
}

// Len reports the number of stored entries, including expired ones not yet evicted.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
