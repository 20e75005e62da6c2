// Package migrations holds the schema history of the marketplace database.
// Runner order is by name, so every name starts with its creation timestamp.
package migrations

import "github.com/shashiranjanraj/krishi/pkg/migration"

// All returns every migration, oldest first.
func All() []migration.Named {
	return []migration.Named{
		{Name: "20260101000000_create_users_table", Migration: CreateUsersTable{}},
		{Name: "20260101000001_create_lands_tables", Migration: CreateLandsTables{}},
		{Name: "20260101000002_create_products_table", Migration: CreateProductsTable{}},
		{Name: "20260101000003_create_orders_tables", Migration: CreateOrdersTables{}},
		{Name: "20260101000004_create_moderation_audits_table", Migration: CreateModerationAuditsTable{}},
		{Name: "20260101000005_create_failed_jobs_table", Migration: CreateFailedJobsTable{}},
	}
}
