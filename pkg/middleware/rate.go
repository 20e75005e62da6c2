// Package middleware holds the HTTP middleware stack: request logging, panic
// recovery, CORS, per-client rate limiting and bearer authentication.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shashiranjanraj/krishi/pkg/response"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one token bucket per client IP.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

// NewLimiter allows perMinute requests per IP with the given burst.
func NewLimiter(perMinute, burst int) *Limiter {
	return &Limiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		idle:     3 * time.Minute,
	}
}

// Allow reports whether ip may make a request now.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()
	return v.limiter.Allow()
}

// Evict forgets clients idle for longer than the idle window. The scheduler
// calls it periodically.
func (l *Limiter) Evict() int {
	cutoff := time.Now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			n++
		}
	}
	return n
}

// Middleware rejects over-limit clients with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
