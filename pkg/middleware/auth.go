package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/response"
	"github.com/shashiranjanraj/krishi/pkg/session"
)

// TokenValidator resolves a bearer token to a live session.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*access.Session, error)
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate attaches the session for a bearer token. Requests without a
// token continue anonymously and are judged by rbac.Require; a token that
// fails validation is rejected with 401 so the client can log out.
func Authenticate(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := v.Validate(r.Context(), token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
				response.Unauthorized(w)
				return
			}

			ctx := session.WithContext(r.Context(), sess)
			ctx = session.WithToken(ctx, token)
			ctx = logger.With(ctx, "user_id", sess.UserID, "role", sess.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
