package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the Redis-backed Store.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Client exposes the underlying client for the queue driver.
func (r *Redis) Client() *redis.Client { return r.rdb }

func (r *Redis) Get(ctx context.Context, key string, dest any) error {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache: get %s: %w", key, err)
	}
	return decode(b, dest)
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := encode(value)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache: exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) DelPrefix(ctx context.Context, prefix string) error {
	iter := r.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: scan %s*: %w", prefix, err)
	}
	return r.Del(ctx, batch...)
}
