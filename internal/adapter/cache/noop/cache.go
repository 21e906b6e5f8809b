package noop

import (
	"context"
	"time"

	"tasklist/internal/core/port"
)

// noopRepository backs CACHE_DRIVER=none. Every read is a miss.
type noopRepository struct{}

func NewCacheRepository() port.CacheRepository {
	return &noopRepository{}
}

func (c *noopRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (c *noopRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (c *noopRepository) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *noopRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	return nil
}

func (c *noopRepository) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return 0, nil
}

func (c *noopRepository) Close() error {
	return nil
}
