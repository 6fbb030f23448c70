package model

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusPaid InvoiceStatus = "paid"
	InvoiceStatusVoid InvoiceStatus = "void"
)

// InvoiceLine snapshots one purchased course at the price charged.
type InvoiceLine struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
}

// Invoice is a billing record generated exactly once per completed order.
// Generation is guarded by the order status transition, never by the caller.
type Invoice struct {
	ID        string
	Number    string // e.g. INV-ORD-1042
	OrderID   string
	UserID    string
	Lines     []InvoiceLine
	Subtotal  int64
	Discount  int64
	Tax       int64
	Total     int64
	Billing   *BillingAddress
	Status    InvoiceStatus
	PaidAt    time.Time
	CreatedAt time.Time
}

// NewInvoiceFromOrder snapshots a completed order's charges.
func NewInvoiceFromOrder(o *Order, lines []InvoiceLine, paidAt time.Time) *Invoice {
	return &Invoice{
		ID:        uuid.NewString(),
		Number:    "INV-" + o.Number,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Lines:     lines,
		Subtotal:  o.Subtotal,
		Discount:  o.Discount,
		Tax:       o.Tax,
		Total:     o.Total,
		Billing:   o.Billing,
		Status:    InvoiceStatusPaid,
		PaidAt:    paidAt,
		CreatedAt: time.Now(),
	}
}
