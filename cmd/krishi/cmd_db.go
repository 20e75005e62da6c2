package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/database/migrations"
	"github.com/shashiranjanraj/krishi/database/seeders"
	"github.com/shashiranjanraj/krishi/pkg/app"
	"github.com/shashiranjanraj/krishi/pkg/database"
)

// withDB loads config, opens the database and runs fn against it.
func withDB(fn func(ctx context.Context, db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(context.Background(), db)
}

// krishi migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB) error {
			fmt.Println("Running migrations…")
			return app.Migrate(ctx, db, os.Stdout, migrations.All()...)
		})
	},
}

// krishi migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB) error {
			fmt.Println("Rolling back last batch…")
			return app.Rollback(ctx, db, os.Stdout, migrations.All()...)
		})
	},
}

// krishi migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB) error {
			return app.MigrationStatus(ctx, db, os.Stdout, migrations.All()...)
		})
	},
}

// krishi seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo accounts, land and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *gorm.DB) error {
			fmt.Println("Running seeders…")
			return seeders.Run(ctx, db, os.Stdout, seeders.All()...)
		})
	},
}
