// Package reqid generates request IDs and carries them through the context.
//
// The ID is taken from an inbound X-Request-ID header when present and
// echoed back on the response. The API client sets the same header so that
// client and server logs correlate.
package reqid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the HTTP header used to propagate the request ID.
const Header = "X-Request-ID"

// New returns a fresh random ID.
func New() string {
	return uuid.NewString()
}

// WithValue stores id in ctx.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the request ID in ctx, or "".
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Middleware assigns every request an ID, reusing an upstream one if sent.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" {
				id = New()
			}
			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}
