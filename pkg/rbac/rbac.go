// Package rbac gates routes on the session's role and account status using
// the access rules in internal/access.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/response"
	"github.com/shashiranjanraj/krishi/pkg/session"
)

// Require admits sessions whose role is in roles; with no roles it admits any
// authenticated session. Anonymous callers get 401 with redirect /login, the
// wrong role gets 403 with a redirect to that role's home.
func Require(roles ...access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := access.Authorize(session.FromContext(r.Context()), roles...)
			if !d.Allowed {
				response.Fail(w, r, apperr.NotAuthorized(d.Redirect, d.NeedsLogin()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireActive is Require for operations that also need an active account,
// such as a farmer creating listings.
func RequireActive(roles ...access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			d := access.RequireActive(sess, roles...)
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}
			if access.Authorize(sess, roles...).Allowed {
				response.Fail(w, r, apperr.Inactive(d.Redirect))
				return
			}
			response.Fail(w, r, apperr.NotAuthorized(d.Redirect, d.NeedsLogin()))
		})
	}
}
