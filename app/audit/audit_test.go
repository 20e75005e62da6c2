package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
)

func TestGormRecorderRecent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:audit_recent?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ModerationAudit{}))

	ctx := context.Background()
	r := NewGormRecorder(db)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, r.Record(ctx, models.ModerationAudit{ActorID: 1, Entity: "land", EntityID: 7, Action: "approve", From: "pending", To: "approved", At: base}))
	require.NoError(t, r.Record(ctx, models.ModerationAudit{ActorID: 1, Entity: "farmer", EntityID: 3, Action: "verify", From: "pending", To: "active", At: base.Add(time.Minute)}))

	all, err := r.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "farmer", all[0].Entity)

	lands, err := r.Recent(ctx, "land", 10)
	require.NoError(t, err)
	require.Len(t, lands, 1)
	assert.Equal(t, uint(7), lands[0].EntityID)
}
