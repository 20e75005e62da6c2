package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
)

// GormRecorder writes to the moderation_audits table.
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(ctx context.Context, entry models.ModerationAudit) error {
	entry.ID = 0
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("audit: record: %w", err)
	}
	return nil
}

func (r *GormRecorder) Recent(ctx context.Context, entity string, limit int) ([]models.ModerationAudit, error) {
	var out []models.ModerationAudit
	q := r.db.WithContext(ctx).Order("at DESC").Order("id DESC").Limit(clampLimit(limit))
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("audit: recent: %w", err)
	}
	return out, nil
}
