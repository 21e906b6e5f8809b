package memory

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"tasklist/internal/core/port"
)

const cleanupInterval = 10 * time.Minute

type memoryRepository struct {
	store *gocache.Cache
}

// NewCacheRepository returns an in-process cache. Entries without a ttl use
// defaultTTL.
func NewCacheRepository(defaultTTL time.Duration) port.CacheRepository {
	return &memoryRepository{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (c *memoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.store.Set(key, stored, ttl)

	return nil
}

func (c *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.store.Get(key)

	if !found {
		return nil, nil
	}

	data, ok := value.([]byte)

	if !ok {
		c.store.Delete(key)
		return nil, nil
	}

	return data, nil
}

func (c *memoryRepository) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *memoryRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}

	return nil
}

func (c *memoryRepository) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	// Add is a no-op when the counter already exists.
	_ = c.store.Add(key, int64(0), gocache.NoExpiration)

	return c.store.IncrementInt64(key, delta)
}

func (c *memoryRepository) Close() error {
	c.store.Flush()
	return nil
}
