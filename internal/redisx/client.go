package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Strings is the subset of redis the handlers and caches depend on, small
// enough to fake in tests.
type Strings interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, val string, ttl time.Duration) error
}

// Cache adapts a redis client to Strings. A miss is ("", nil), not an error.
type Cache struct {
	R *redis.Client
}

func (c Cache) GetString(ctx context.Context, key string) (string, error) {
	s, err := c.R.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return s, err
}

func (c Cache) SetString(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.R.Set(ctx, key, val, ttl).Err()
}
