package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/krishi/internal/fulfillment"
	"github.com/shashiranjanraj/krishi/pkg/collection"
)

// Order is created from a cart at checkout. Items and amounts never change
// after creation; only Status moves.
type Order struct {
	Model
	Number          string             `gorm:"size:36;uniqueIndex;not null" json:"order_number"`
	CustomerID      uint               `gorm:"not null;index" json:"customer_id"`
	Status          fulfillment.Status `gorm:"size:20;not null;default:pending;index" json:"status"`
	StatusLabel     string             `gorm:"-" json:"status_label"`
	Subtotal        decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	PlatformFee     decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"platform_fee"`
	Shipping        decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"shipping"`
	Total           decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"total"`
	ShippingAddress string             `gorm:"type:text" json:"shipping_address,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem is a frozen line of an order.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	FarmerID  uint            `gorm:"not null;index" json:"farmer_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Unit      string          `gorm:"size:32" json:"unit"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

// AfterFind fills the dispatch label.
func (o *Order) AfterFind(*gorm.DB) error {
	o.Derive()
	return nil
}

// Derive recomputes fields that are views over Status.
func (o *Order) Derive() { o.StatusLabel = o.Status.Label() }

// FarmerIDs lists the distinct farmers with items in o.
func (o *Order) FarmerIDs() []uint {
	return collection.Unique(collection.Map(o.Items, func(it OrderItem) uint { return it.FarmerID }))
}

// HasFarmer reports whether farmerID sold anything in o.
func (o *Order) HasFarmer(farmerID uint) bool {
	return collection.Contains(o.Items, func(it OrderItem) bool { return it.FarmerID == farmerID })
}

// OnlyFarmer drops the items not sold by farmerID. Amounts are left as they
// were for the whole order.
func (o *Order) OnlyFarmer(farmerID uint) {
	o.Items = collection.Filter(o.Items, func(it OrderItem) bool { return it.FarmerID == farmerID })
}
