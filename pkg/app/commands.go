package app

// Helpers behind the CLI's database and routing commands. They write
// human-readable output to out.

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/pkg/migration"
	"github.com/shashiranjanraj/krishi/pkg/router"
)

// Migrate runs every pending migration.
func Migrate(ctx context.Context, db *gorm.DB, out io.Writer, all ...migration.Named) error {
	n, err := migration.New(db, out, all...).Run(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintf(out, "✅ %d migration(s) ran\n", n)
	}
	return nil
}

// Rollback reverts the last batch.
func Rollback(ctx context.Context, db *gorm.DB, out io.Writer, all ...migration.Named) error {
	n, err := migration.New(db, out, all...).Rollback(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "↩ %d migration(s) rolled back\n", n)
	return nil
}

// MigrationStatus prints one row per known migration.
func MigrationStatus(ctx context.Context, db *gorm.DB, out io.Writer, all ...migration.Named) error {
	rows, err := migration.New(db, out, all...).Status(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
	for _, s := range rows {
		ran, batch := "No", "-"
		if s.Ran {
			ran, batch = "Yes", fmt.Sprint(s.Batch)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, s.Name)
	}
	return w.Flush()
}

// RouteList prints every route of r.
func RouteList(out io.Writer, r *router.Router) error {
	routes := r.Routes()
	if len(routes) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return nil
	}
	fmt.Fprintf(out, "%-8s  %-44s  %s\n", "METHOD", "PATH", "NAME")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, ri := range routes {
		fmt.Fprintf(out, "%-8s  %-44s  %s\n", ri.Method, ri.Path, ri.Name)
	}
	return nil
}
