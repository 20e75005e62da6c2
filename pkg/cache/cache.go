// Package cache is the key/value store behind carts, token revocation and
// the catalogue cache.
//
// Two drivers implement Store: Redis for shared deployments and an
// in-process map for single-node runs and tests. Open picks Redis when it
// answers a ping and otherwise falls back to memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a JSON value cache with per-key TTL. A zero TTL never expires.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// DelPrefix removes every key starting with prefix.
	DelPrefix(ctx context.Context, prefix string) error
}

// Dial connects to the configured Redis and checks that it answers.
func Dial(ctx context.Context) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: dial %s: %w", config.RedisAddr(), err)
	}
	return rdb, nil
}

// Open connects to the configured Redis. If Redis is unreachable it logs a
// warning and returns a memory store.
func Open(ctx context.Context) Store {
	rdb, err := Dial(ctx)
	if err != nil {
		logger.Warn("cache: redis unavailable, using memory store", "error", err)
		return NewMemory()
	}
	logger.Info("cache: connected", "addr", config.RedisAddr())
	return NewRedis(rdb)
}

// Remember returns the cached value for key, or calls load, caches its result
// for ttl and returns it.
func Remember(ctx context.Context, s Store, key string, ttl time.Duration, dest any, load func() error) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrMiss) {
		logger.WithCtx(ctx).Warn("cache: read failed", "key", key, "error", err)
	}
	if err := load(); err != nil {
		return err
	}
	if err := s.Set(ctx, key, dest, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache: write failed", "key", key, "error", err)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cache: encode: %w", err)
	}
	return b, nil
}

func decode(b []byte, dest any) error {
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("cache: decode: %w", err)
	}
	return nil
}
