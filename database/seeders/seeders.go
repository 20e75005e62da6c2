// Package seeders fills a fresh database with demo accounts and listings.
//
// Seeders are idempotent: rows are matched on a natural key and only
// created when missing, so `krishi seed` can be rerun safely.
package seeders

import (
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"
)

// Seeder is one named seed step.
type Seeder struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

// All returns the seeders in the order they must run.
func All() []Seeder {
	return []Seeder{
		{Name: "users", Run: SeedUsers},
		{Name: "lands", Run: SeedLands},
		{Name: "products", Run: SeedProducts},
	}
}

// Run executes seeders in order and stops on the first error.
func Run(ctx context.Context, db *gorm.DB, out io.Writer, seeders ...Seeder) error {
	if out == nil {
		out = io.Discard
	}
	if len(seeders) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}
	for _, s := range seeders {
		fmt.Fprintf(out, "  • Running seeder: %s … ", s.Name)
		if err := s.Run(ctx, db); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", s.Name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
