package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

type broken struct{}

func (broken) Up(*gorm.DB) error   { return errors.New("nope") }
func (broken) Down(*gorm.DB) error { return nil }

func openDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRunAndRollback(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, "migration_run")
	var out bytes.Buffer
	r := New(db, &out, Named{"20260101000000_create_widgets", createWidgets{}})

	n, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, db.Migrator().HasTable(&widget{}))

	n, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, out.String(), "Nothing to migrate.")

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Status{{Name: "20260101000000_create_widgets", Ran: true, Batch: 1}}, st)

	n, err = r.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, db.Migrator().HasTable(&widget{}))
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, "migration_fail")
	r := New(db, nil,
		Named{"20260102000000_broken", broken{}},
		Named{"20260101000000_create_widgets", createWidgets{}},
	)

	n, err := r.Run(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, n, "earlier migration still applied")

	st, err := r.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st[0].Ran)
	assert.False(t, st[1].Ran)
}
