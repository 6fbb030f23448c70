package model

import (
	"time"

	"course-marketplace/internal/domain"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // created at checkout start, awaiting provider result
	OrderStatusProcessing OrderStatus = "processing" // provider session created, user redirected
	OrderStatusCompleted  OrderStatus = "completed"  // paid; terminal for the payment flow
	OrderStatusFailed     OrderStatus = "failed"     // provider reported failure
	OrderStatusCancelled  OrderStatus = "cancelled"  // admin/user cancel before payment
	OrderStatusRefunded   OrderStatus = "refunded"   // refunded after completion
	OrderStatusShipped    OrderStatus = "shipped"    // physical goods only; unused for courses
)

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodFree   PaymentMethod = "free" // fully-discounted checkout, no provider involved
)

// RefundRecord is attached to an order when an admin refunds it.
type RefundRecord struct {
	Amount     int64     `json:"amount"`
	Reason     string    `json:"reason"`
	RefundedAt time.Time `json:"refunded_at"`
	ActorID    string    `json:"actor_id"`
	ProviderID string    `json:"provider_id"` // provider refund id
}

// BillingAddress is snapshotted onto the order at checkout time.
type BillingAddress struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Line1   string `json:"line1,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Order records a single checkout attempt. PaymentIntentID is the provider
// session/order id and the unique join key used by both webhook delivery and
// client-side polling; both paths must reach the same terminal state exactly once.
type Order struct {
	ID        string
	Number    string // human-readable, e.g. ORD-1042
	UserID    string
	CourseIDs []string

	Subtotal int64 // cents
	Discount int64
	Tax      int64
	Total    int64

	Status          OrderStatus
	PaymentIntentID string
	PaymentMethod   PaymentMethod
	CouponID        *string

	Billing *BillingAddress
	Refund  *RefundRecord

	// Guest checkout bookkeeping, stored server-side rather than round-tripped
	// through provider metadata. TempPassword is transient: it exists only
	// until the welcome mail has been dispatched, then is cleared.
	GuestNewUser bool
	TempPassword string

	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

func NewOrder(userID string, courseIDs []string, subtotal, discount, tax, total int64, method PaymentMethod) (*Order, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if len(courseIDs) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if subtotal < 0 || discount < 0 || tax < 0 || total < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		CourseIDs:     courseIDs,
		Subtotal:      subtotal,
		Discount:      discount,
		Tax:           tax,
		Total:         total,
		Status:        OrderStatusPending,
		PaymentMethod: method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsTerminal reports whether the order may no longer transition to completed.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}
