package models

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/internal/moderation"
)

// Land is a farmer's plot. Products are listed against an approved land.
type Land struct {
	Model
	FarmerID       uint                     `gorm:"not null;index" json:"farmer_id"`
	Name           string                   `gorm:"size:255;not null" json:"name"`
	Location       string                   `gorm:"size:255;not null" json:"location"`
	Latitude       float64                  `json:"latitude"`
	Longitude      float64                  `json:"longitude"`
	AreaAcres      float64                  `gorm:"not null;default:0" json:"area_acres"`
	SoilType       string                   `gorm:"size:100" json:"soil_type"`
	IrrigationType string                   `gorm:"size:100" json:"irrigation_type"`
	Status         moderation.ListingStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Notes          string                   `gorm:"type:text" json:"notes,omitempty"`
	IsApproved     bool                     `gorm:"-" json:"is_approved"`

	Crops      []LandCrop     `gorm:"foreignKey:LandID" json:"crops"`
	Facilities []LandFacility `gorm:"foreignKey:LandID" json:"facilities"`
}

// LandCrop is a crop grown on a land. It lives and dies with the land.
type LandCrop struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	LandID uint   `gorm:"not null;index" json:"-"`
	Name   string `gorm:"size:100;not null" json:"name"`
}

// LandFacility is an on-site facility such as storage or a borewell.
type LandFacility struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	LandID uint   `gorm:"not null;index" json:"-"`
	Name   string `gorm:"size:100;not null" json:"name"`
}

// AfterFind fills the derived approval flag.
func (l *Land) AfterFind(*gorm.DB) error {
	l.Derive()
	return nil
}

// Derive recomputes fields that are views over Status.
func (l *Land) Derive() { l.IsApproved = l.Status.IsApproved() }
