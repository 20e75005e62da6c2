package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/krishi/pkg/metrics"
	"github.com/shashiranjanraj/krishi/pkg/middleware"
	"github.com/shashiranjanraj/krishi/pkg/reqid"
	"github.com/shashiranjanraj/krishi/pkg/response"
	"github.com/shashiranjanraj/krishi/pkg/router"
)

// Router builds the router with the global middleware stack, the health and
// metrics endpoints, and every route registered by routes.
//
// Middleware order (outermost first): metrics, recovery, request id, logger,
// CORS, rate limiter.
func (c *Container) Router(routes ...func(*router.Router)) *router.Router {
	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(),
		c.Limiter.Middleware,
	)

	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", c.health)

	for _, fn := range routes {
		fn(r)
	}
	return r
}

// Handler is Router as an http.Handler.
func (c *Container) Handler(routes ...func(*router.Router)) http.Handler {
	return c.Router(routes...).Handler()
}

func (c *Container) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		response.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}
