// Package app owns the process-wide infrastructure shared by the server, the
// queue workers and the CLI: the database, the cache, the event bus, the job
// queue, the worker pool, the scheduler and the rate limiter.
//
//	c, err := app.Open(ctx)
//	if err != nil { ... }
//	defer c.Close()
//	handler := c.Handler(routes...)
//	err = c.Serve(ctx, ":"+config.AppPort(), handler, 2)
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/database"
	"github.com/shashiranjanraj/krishi/pkg/event"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/middleware"
	"github.com/shashiranjanraj/krishi/pkg/queue"
	"github.com/shashiranjanraj/krishi/pkg/schedule"
	"github.com/shashiranjanraj/krishi/pkg/workerpool"
)

// Container is the shared infrastructure of one process.
type Container struct {
	DB        *gorm.DB
	Cache     cache.Store
	Redis     *redis.Client // nil when running on the memory drivers
	Bus       *event.Bus
	Queue     *queue.Manager
	Pool      *workerpool.Pool
	Scheduler *schedule.Scheduler
	Limiter   *middleware.Limiter
}

// Open loads config and connects everything. Redis is optional: without it
// the cache and the queue run in memory.
func Open(ctx context.Context) (*Container, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("app: config: %w", err)
	}
	db, err := database.Connect()
	if err != nil {
		return nil, err
	}

	c := New(db)
	if rdb, err := cache.Dial(ctx); err != nil {
		logger.Warn("app: redis unavailable, cache and queue run in memory", "error", err)
	} else {
		logger.Info("app: redis connected", "addr", config.RedisAddr())
		c.Redis = rdb
		c.Cache = cache.NewRedis(rdb)
		c.Queue = queue.New(queue.NewRedisDriver(rdb))
		c.Queue.UseFailedStore(queue.NewGormFailedStore(db))
		configureRetry(c.Queue)
	}
	return c, nil
}

// New builds a container over db with in-memory cache and queue.
func New(db *gorm.DB) *Container {
	q := queue.New(queue.NewMemoryDriver())
	q.UseFailedStore(queue.NewGormFailedStore(db))
	configureRetry(q)
	return &Container{
		DB:        db,
		Cache:     cache.NewMemory(),
		Bus:       event.NewBus(),
		Queue:     q,
		Pool:      workerpool.New(config.GetInt("WORKER_POOL_SIZE", 8)),
		Scheduler: schedule.New(),
		Limiter:   middleware.NewLimiter(config.GetInt("RATE_LIMIT_PER_MINUTE", 200), config.GetInt("RATE_LIMIT_BURST", 50)),
	}
}

// configureRetry applies QUEUE_TRIES and QUEUE_BACKOFF_SECONDS.
func configureRetry(q *queue.Manager) {
	q.SetRetry(config.GetInt("QUEUE_TRIES", 3), time.Duration(config.GetInt("QUEUE_BACKOFF_SECONDS", 1))*time.Second)
}

// Close waits for async listeners and detaches them, stops the pool and
// releases connections.
func (c *Container) Close() error {
	c.Bus.Wait()
	c.Bus.Flush()
	c.Pool.Shutdown()

	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, database.Close(c.DB))
	}
	return errors.Join(errs...)
}
