// Package session carries the authenticated session through a request and
// keeps the server-side revocation list for logged-out tokens.
//
//	sess := session.FromContext(r.Context())
//	if access.Authorize(sess, access.RoleCustomer).Allowed { ... }
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/cache"
)

type ctxKey struct{}

type tokenKey struct{}

// WithContext stores s in ctx.
func WithContext(ctx context.Context, s *access.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session in ctx, or nil for anonymous requests.
func FromContext(ctx context.Context) *access.Session {
	s, _ := ctx.Value(ctxKey{}).(*access.Session)
	return s
}

// WithToken stores the raw bearer token so logout can revoke it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the raw bearer token, or "".
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// ─── Revocation ──────────────────────────────────────────────────────────────

// Revocations records logged-out token IDs until the token would have
// expired anyway.
type Revocations struct {
	store cache.Store
	now   func() time.Time
}

// NewRevocations keeps its list in store.
func NewRevocations(store cache.Store) *Revocations {
	return &Revocations{store: store, now: time.Now}
}

func revokedKey(jti string) string { return "krishi:revoked:" + jti }

// Revoke marks jti revoked until exp. Already-expired tokens need no entry.
func (r *Revocations) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := exp.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.store.Set(ctx, revokedKey(jti), exp.Unix(), ttl); err != nil {
		return fmt.Errorf("session: revoke: %w", err)
	}
	return nil
}

// Revoked reports whether jti was logged out.
func (r *Revocations) Revoked(ctx context.Context, jti string) (bool, error) {
	ok, err := r.store.Exists(ctx, revokedKey(jti))
	if err != nil {
		return false, fmt.Errorf("session: revoked: %w", err)
	}
	return ok, nil
}
