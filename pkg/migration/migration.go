// Package migration runs ordered schema migrations and records them in a
// tracking table, grouped into batches so the last run can be rolled back.
//
//	r := migration.New(db, os.Stdout, migrations.All()...)
//	r.Run(ctx)      // apply pending
//	r.Rollback(ctx) // undo last batch
package migration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// Migration is one reversible schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Named pairs a migration with its timestamp-prefixed name, e.g.
// "20260101000000_create_users_table". Names sort chronologically.
type Named struct {
	Name string
	Migration
}

type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "schema_migrations" }

// Status is one row of the status report.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner executes and tracks migrations.
type Runner struct {
	db  *gorm.DB
	out io.Writer
	all []Named
}

// New creates a Runner over db. Progress lines go to out.
func New(db *gorm.DB, out io.Writer, all ...Named) *Runner {
	sorted := append([]Named(nil), all...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out, all: sorted}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]migrationRecord, error) {
	var recs []migrationRecord
	if err := r.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	out := make(map[string]migrationRecord, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies every pending migration as one batch. Each migration and its
// tracking row commit together.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return 0, err
	}

	batch := r.lastBatch(ctx) + 1
	n := 0
	for _, m := range r.all {
		if _, ok := done[m.Name]; ok {
			continue
		}
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", m.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationRecord{Name: m.Name, Batch: batch}).Error
		})
		if err != nil {
			return n, fmt.Errorf("migration: %s up: %w", m.Name, err)
		}
		n++
	}

	if n == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
	} else {
		logger.Info("migration: done", "ran", n, "batch", batch)
	}
	return n, nil
}

// Rollback reverses the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	last := r.lastBatch(ctx)
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var recs []migrationRecord
	if err := r.db.WithContext(ctx).Where("batch = ?", last).Order("id desc").Find(&recs).Error; err != nil {
		return 0, fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	byName := make(map[string]Migration, len(r.all))
	for _, m := range r.all {
		byName[m.Name] = m.Migration
	}

	n := 0
	for _, rec := range recs {
		m, ok := byName[rec.Name]
		if !ok {
			return n, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&migrationRecord{}, rec.ID).Error
		})
		if err != nil {
			return n, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		n++
	}
	return n, nil
}

// Status lists every known migration and whether it has run.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.all))
	for _, m := range r.all {
		rec, ok := done[m.Name]
		out = append(out, Status{Name: m.Name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch(ctx context.Context) int {
	var last struct{ Max int }
	r.db.WithContext(ctx).Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&last)
	return last.Max
}
