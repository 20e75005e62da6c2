// Package database opens the gorm connection for the configured driver.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/krishi/config"
)

// DB is the process-wide handle set by Connect. Code below the command layer
// receives *gorm.DB explicitly instead of reading this.
var DB *gorm.DB

// Connect opens the configured database and stores it in DB.
func Connect() (*gorm.DB, error) {
	db, err := Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	DB = db
	return db, nil
}

// Open opens driver/dsn and configures the pool.
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent), // pkg/logger owns logging
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// one writer keeps sqlite from returning SQLITE_BUSY under concurrent checkouts
		sqlDB.SetMaxOpenConns(1)
		db.Exec("PRAGMA foreign_keys = ON")
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}
