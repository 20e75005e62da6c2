package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/internal/moderation"
)

// Product is a listing sold by a farmer from one of their lands.
type Product struct {
	Model
	FarmerID         uint                     `gorm:"not null;index" json:"farmer_id"`
	LandID           uint                     `gorm:"not null;index" json:"land_id"`
	Name             string                   `gorm:"size:255;not null;index" json:"name"`
	Description      string                   `gorm:"type:text" json:"description"`
	Category         string                   `gorm:"size:100;index" json:"category,omitempty"`
	Price            decimal.Decimal          `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock            int                      `gorm:"not null;default:0" json:"stock"`
	Unit             string                   `gorm:"size:32;not null" json:"unit"`
	MaxOrderQuantity *int                     `json:"max_order_quantity,omitempty"`
	Status           moderation.ListingStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Notes            string                   `gorm:"type:text" json:"notes,omitempty"`
	IsApproved       bool                     `gorm:"-" json:"is_approved"`

	Land *Land `gorm:"foreignKey:LandID" json:"land,omitempty"`
}

// AfterFind fills the derived approval flag.
func (p *Product) AfterFind(*gorm.DB) error {
	p.Derive()
	return nil
}

// Derive recomputes fields that are views over Status.
func (p *Product) Derive() { p.IsApproved = p.Status.IsApproved() }

// Limit is the most of p one cart line may hold: the stock, capped by the
// per-order maximum when one is set.
func (p *Product) Limit() int {
	if p.MaxOrderQuantity != nil && *p.MaxOrderQuantity > 0 && *p.MaxOrderQuantity < p.Stock {
		return *p.MaxOrderQuantity
	}
	return p.Stock
}

// Orderable reports whether p can be put in a cart or bought. Land must be
// loaded; a product without its land is never orderable.
func (p *Product) Orderable() bool {
	return p.Land != nil && moderation.IsOrderable(p.Status, p.Stock, p.Land.Status)
}

// Listed reports whether p and its land are approved, whatever the stock.
func (p *Product) Listed() bool {
	if p.Land == nil {
		return false
	}
	return moderation.IsListed(p.Status, p.Land.Status)
}
