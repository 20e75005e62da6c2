// Package repositories wraps gorm queries per model. Every method takes the
// *gorm.DB to run on through the repository, so a service can rebind a
// repository to a transaction with Tx.
package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/pkg/apperr"
)

// notFound turns gorm's missing-row error into a NotFound for entity.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return err
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
