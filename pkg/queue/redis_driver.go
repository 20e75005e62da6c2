package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisQueueKey = "krishi:queue:jobs"

// RedisDriver keeps jobs in a Redis list (LPUSH / BRPOP), so any process
// running queue:work can pick them up.
type RedisDriver struct {
	rdb *redis.Client
	key string
}

// NewRedisDriver uses the client shared with pkg/cache.
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	return &RedisDriver{rdb: rdb, key: redisQueueKey}
}

func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, d.key, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// Pop blocks for up to 5s waiting for a job.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	result, err := d.rdb.BRPop(ctx, 5*time.Second, d.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}
