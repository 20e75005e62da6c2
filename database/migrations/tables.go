package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/app/models"
	"github.com/shashiranjanraj/krishi/pkg/queue"
)

// -------- users --------

type CreateUsersTable struct{}

func (CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}

// -------- lands, crops, facilities --------

type CreateLandsTables struct{}

func (CreateLandsTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Land{}, &models.LandCrop{}, &models.LandFacility{})
}

func (CreateLandsTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.LandFacility{}, &models.LandCrop{}, &models.Land{})
}

// -------- products --------

type CreateProductsTable struct{}

func (CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Product{})
}

// -------- orders, order items --------

type CreateOrdersTables struct{}

func (CreateOrdersTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (CreateOrdersTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.OrderItem{}, &models.Order{})
}

// -------- moderation audits --------

type CreateModerationAuditsTable struct{}

func (CreateModerationAuditsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.ModerationAudit{})
}

func (CreateModerationAuditsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.ModerationAudit{})
}

// -------- failed jobs --------

type CreateFailedJobsTable struct{}

func (CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&queue.FailedJobRecord{})
}
