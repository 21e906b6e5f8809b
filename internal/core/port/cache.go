package port

import (
	"context"
	"time"
)

// CacheRepository is a byte-oriented key/value store. Get returns (nil, nil)
// on a miss.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	// IncrBy adds delta to a counter that never expires and returns the new
	// value. A missing counter starts at zero, so a delta of 0 reads it.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	Close() error
}
