package app

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/krishi/internal/server"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/metrics"
)

// Serve runs the HTTP server together with workers queue workers and the
// scheduler until ctx is cancelled.
func (c *Container) Serve(ctx context.Context, addr string, handler http.Handler, workers int) error {
	if err := c.ScheduleMaintenance(); err != nil {
		return err
	}
	c.Queue.Work(ctx, max(workers, 1))
	c.Scheduler.Start(ctx)

	err := server.Run(ctx, addr, handler)
	c.Queue.Wait()
	return err
}

// ScheduleMaintenance registers the housekeeping tasks: sweeping expired
// in-memory cache entries and forgetting idle rate-limit clients.
func (c *Container) ScheduleMaintenance() error {
	if mem, ok := c.Cache.(*cache.Memory); ok {
		err := c.Scheduler.Add("cache:sweep", "@every 1m", func(context.Context) error {
			if n := mem.Sweep(); n > 0 {
				metrics.CartsSwept.Add(float64(n))
				logger.Debug("cache: swept", "entries", n)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return c.Scheduler.Add("ratelimit:evict", "@every 5m", func(context.Context) error {
		c.Limiter.Evict()
		return nil
	})
}
