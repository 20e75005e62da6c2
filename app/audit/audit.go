// Package audit keeps the trail of admin moderation decisions.
//
// Decisions go to the moderation_audits table by default. Setting
// AUDIT_MONGO_URI sends them to a MongoDB collection instead.
package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// Recorder stores and lists moderation decisions.
type Recorder interface {
	Record(ctx context.Context, entry models.ModerationAudit) error
	// Recent returns the newest entries first. entity "" lists every entity.
	Recent(ctx context.Context, entity string, limit int) ([]models.ModerationAudit, error)
}

// Open picks the recorder from config. The returned close func releases the
// recorder's connection, if any.
func Open(ctx context.Context, db *gorm.DB) (Recorder, func(context.Context) error, error) {
	uri := config.AuditMongoURI()
	if uri == "" {
		return NewGormRecorder(db), func(context.Context) error { return nil }, nil
	}
	m, err := NewMongoRecorder(ctx, uri, config.AuditMongoDB())
	if err != nil {
		return nil, nil, err
	}
	logger.Info("audit: recording to mongodb", "db", config.AuditMongoDB())
	return m, m.Close, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
