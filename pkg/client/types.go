package client

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/krishi/internal/access"
)

// User is the profile returned by /auth/login and /auth/me.
type User struct {
	ID     uint        `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Phone  string      `json:"phone,omitempty"`
	Role   access.Role `json:"role"`
	Status string      `json:"status"`
}

// Credentials are what Login sends.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type Product struct {
	ID               uint            `json:"id"`
	FarmerID         uint            `json:"farmer_id"`
	LandID           uint            `json:"land_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Category         string          `json:"category,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	Unit             string          `json:"unit"`
	MaxOrderQuantity *int            `json:"max_order_quantity,omitempty"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes,omitempty"`
	IsApproved       bool            `json:"is_approved"`
}

type CartLine struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Quote is what checkout would charge for the cart as it stands.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	PlatformFee decimal.Decimal `json:"platform_fee"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
}

type Cart struct {
	CustomerID uint       `json:"customer_id"`
	Lines      []CartLine `json:"items"`
	Quote      Quote      `json:"quote"`
}

type OrderItem struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	FarmerID  uint            `json:"farmer_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID              uint            `json:"id"`
	Number          string          `json:"order_number"`
	CustomerID      uint            `json:"customer_id"`
	Status          string          `json:"status"`
	StatusLabel     string          `json:"status_label"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BulkReport is the per-id outcome of a bulk moderation call.
type BulkReport struct {
	Succeeded []uint          `json:"succeeded"`
	Failed    map[uint]string `json:"failed"`
}

type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Page is one page of a listing endpoint.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type Land struct {
	ID         uint    `json:"id"`
	FarmerID   uint    `json:"farmer_id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	AreaAcres  float64 `json:"area_acres"`
	Status     string  `json:"status"`
	Notes      string  `json:"notes,omitempty"`
	IsApproved bool    `json:"is_approved"`
}

// Registration is the body of a sign-up; Role is customer or farmer.
type Registration struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Phone    string      `json:"phone,omitempty"`
	Role     access.Role `json:"role"`
}
