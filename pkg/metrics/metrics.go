// Package metrics holds the Prometheus instrumentation for the marketplace.
//
//	r.Use(metrics.Middleware())
//	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "krishi"

// ─────────────────────────────────────────────
// HTTP
// ─────────────────────────────────────────────

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})
)

// ─────────────────────────────────────────────
// Domain
// ─────────────────────────────────────────────

var (
	// SessionsIssued counts successful logins by role.
	SessionsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "sessions_issued_total",
			Help:      "Sessions issued by role.",
		},
		[]string{"role"},
	)

	// LoginFailures counts rejected credentials.
	LoginFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_failures_total",
		Help:      "Rejected login attempts.",
	})

	// ModerationTransitions counts moderation actions by entity and outcome.
	ModerationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "moderation",
			Name:      "transitions_total",
			Help:      "Moderation actions applied, by entity, action and result.",
		},
		[]string{"entity", "action", "result"}, // result: ok | rejected | error
	)

	// CartOperations counts cart mutations.
	CartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart operations by kind and result.",
		},
		[]string{"op", "result"},
	)

	// Checkouts counts checkout attempts by result.
	Checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		},
		[]string{"result"}, // ok | out_of_stock | unavailable | empty | error
	)

	// OrderTransitions counts order status changes.
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Order status transitions by target status.",
		},
		[]string{"to"},
	)

	// QueueJobsProcessed counts processed queue jobs by status.
	QueueJobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "jobs_processed_total",
			Help:      "Total queue jobs processed.",
		},
		[]string{"job_type", "status"},
	)

	QueueJobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "job_duration_seconds",
			Help:      "Duration of queue job processing in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job_type"},
	)

	// CartsSwept counts expired in-memory cache entries, carts included,
	// reclaimed by the scheduler.
	CartsSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "swept_total",
		Help:      "Expired in-memory cache entries reclaimed.",
	})
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the registry served on /metrics.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestDuration,
		RequestInFlight,
		SessionsIssued,
		LoginFailures,
		ModerationTransitions,
		CartOperations,
		Checkouts,
		OrderTransitions,
		QueueJobsProcessed,
		QueueJobDuration,
		CartsSwept,
	)
}

// ─────────────────────────────────────────────
// HTTP middleware
// ─────────────────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request duration labelled by the chi route pattern,
// so /orders/{id} is one series rather than one per order.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			RequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(rr.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the registry in the Prometheus text and OpenMetrics formats.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordQueueJob records a queue job result.
func RecordQueueJob(jobType, status string, start time.Time) {
	QueueJobsProcessed.WithLabelValues(jobType, status).Inc()
	QueueJobDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}

// Result turns an error into the ok/error label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
