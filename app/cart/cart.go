// Package cart is the customer basket: lines keyed by product with the
// price captured when the product was first added.
//
// The cart is advisory. Quantities are clamped against stock at write time
// only; checkout re-validates everything.
package cart

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Line is one product in a cart.
type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // snapshot at first add
}

// Subtotal is Price × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is one customer's basket. Lines are kept sorted by product id.
type Cart struct {
	CustomerID uint   `json:"customer_id"`
	Lines      []Line `json:"items"`
}

// New returns an empty cart for customerID.
func New(customerID uint) *Cart {
	return &Cart{CustomerID: customerID, Lines: []Line{}}
}

// Find returns the line for productID.
func (c *Cart) Find(productID uint) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Put inserts or replaces the line for l.ProductID.
func (c *Cart) Put(l Line) {
	if i := c.index(l.ProductID); i >= 0 {
		c.Lines[i] = l
		return
	}
	c.Lines = append(c.Lines, l)
	sort.Slice(c.Lines, func(a, b int) bool { return c.Lines[a].ProductID < c.Lines[b].ProductID })
}

// Remove drops the line for productID and reports whether there was one.
func (c *Cart) Remove(productID uint) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.Lines) == 0 }

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Total is the sum of price snapshot × quantity over every line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) index(productID uint) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// ── Quote ────────────────────────────────────────────────────────────────────

// Quote is what checkout would charge for a subtotal.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	PlatformFee decimal.Decimal `json:"platform_fee"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
}

// NewQuote applies feeRate to subtotal, rounded to paise. Shipping is free.
func NewQuote(subtotal, feeRate decimal.Decimal) Quote {
	fee := subtotal.Mul(feeRate).Round(2)
	return Quote{
		Subtotal:    subtotal,
		PlatformFee: fee,
		Shipping:    decimal.Zero,
		Total:       subtotal.Add(fee),
	}
}
