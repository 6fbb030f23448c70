package model

import (
	"time"

	"github.com/google/uuid"
)

// CustomerProfile maps a user to a provider customer id and their saved
// payment instruments. Its lifecycle is independent from orders. Saved
// instrument payloads are stored encrypted at rest.
type CustomerProfile struct {
	ID         string
	UserID     string
	Gateway    string // stripe only today
	CustomerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SavedPaymentMethod is one saved instrument. Payload holds the encrypted
// provider payment-method blob; only last4/brand are stored in the clear.
type SavedPaymentMethod struct {
	ID        string
	ProfileID string
	Brand     string
	Last4     string
	Payload   []byte
	CreatedAt time.Time
}

func NewCustomerProfile(userID, gateway, customerID string) *CustomerProfile {
	now := time.Now()
	return &CustomerProfile{
		ID:         uuid.NewString(),
		UserID:     userID,
		Gateway:    gateway,
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
