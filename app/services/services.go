// Package services holds the marketplace use cases. Every operation takes
// the caller's *access.Session explicitly and consults access control before
// touching state.
package services

import (
	"context"

	"github.com/shashiranjanraj/krishi/internal/access"
	"github.com/shashiranjanraj/krishi/pkg/apperr"
	"github.com/shashiranjanraj/krishi/pkg/cache"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// cataloguePrefix namespaces every cached catalogue read.
const cataloguePrefix = "catalogue:"

// authorize maps an access decision onto an error.
func authorize(s *access.Session, roles ...access.Role) error {
	d := access.Authorize(s, roles...)
	if d.Allowed {
		return nil
	}
	return apperr.NotAuthorized(d.Redirect, d.NeedsLogin())
}

// authorizeActive is authorize plus the active-account requirement.
func authorizeActive(s *access.Session, roles ...access.Role) error {
	if err := authorize(s, roles...); err != nil {
		return err
	}
	if d := access.RequireActive(s, roles...); !d.Allowed {
		return apperr.Inactive(d.Redirect)
	}
	return nil
}

// invalidateCatalogue drops every cached catalogue page. A failure only
// leaves stale reads until the TTL, so it is logged, not returned.
func invalidateCatalogue(ctx context.Context, c cache.Store) {
	if err := c.DelPrefix(ctx, cataloguePrefix); err != nil {
		logger.WithCtx(ctx).Warn("catalogue: invalidate failed", "error", err)
	}
}
