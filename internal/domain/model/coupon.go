package model

import "time"

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// Coupon is validated against min-purchase, expiry and usage-limit rules.
// Validation is a pure read; usage is incremented only when an order is
// actually created with the coupon applied.
type Coupon struct {
	ID          string
	Code        string
	Type        DiscountType
	Value       int64 // percent (0-100) or fixed cents
	MinPurchase int64
	ExpiresAt   *time.Time
	UsageLimit  int // 0 = unlimited
	UsageCount  int
	Active      bool
	CreatedAt   time.Time
}

// DiscountFor computes the discount this coupon grants on a subtotal,
// capped at the subtotal. Eligibility checks live in the coupon use case.
func (c *Coupon) DiscountFor(subtotal int64) int64 {
	var d int64
	switch c.Type {
	case DiscountTypePercent:
		d = subtotal * c.Value / 100
	case DiscountTypeFixed:
		d = c.Value
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}
