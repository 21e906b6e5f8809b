package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tasklist/internal/core/port"
)

const scanBatch = 100

type Options struct {
	Addr     string
	Password string
	DB       int
}

type redisRepository struct {
	client *goredis.Client
}

// NewCacheRepository connects to Redis and fails fast when the server does
// not answer a ping.
func NewCacheRepository(ctx context.Context, opts Options) (port.CacheRepository, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	return NewFromClient(client), nil
}

func NewFromClient(client *goredis.Client) port.CacheRepository {
	return &redisRepository{client: client}
}

func (c *redisRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()

	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return data, nil
}

func (c *redisRepository) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeleteByPrefix collects matching keys with SCAN and only then unlinks
// them. Deleting mid-iteration lets the server rehash and skip keys.
func (c *redisRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	var (
		cursor  uint64
		matched []string
	)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatch).Result()

		if err != nil {
			return err
		}

		matched = append(matched, keys...)
		cursor = next

		if cursor == 0 {
			break
		}
	}

	for start := 0; start < len(matched); start += scanBatch {
		end := min(start+scanBatch, len(matched))

		if err := c.client.Unlink(ctx, matched[start:end]...).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (c *redisRepository) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return c.client.IncrBy(ctx, key, delta).Result()
}

func (c *redisRepository) Close() error {
	return c.client.Close()
}
