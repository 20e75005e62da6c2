// Package models holds the gorm models of the marketplace.
package models

import "time"

// Model is the common primary key and timestamps, with JSON names.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
