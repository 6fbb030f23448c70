package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeRefund  TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSucceeded TransactionStatus = "succeeded"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable audit log entry per payment attempt or refund.
// Once it reaches a terminal status the only permitted mutation is attaching
// the gateway response payload.
type Transaction struct {
	ID           string
	OrderID      string
	Type         TransactionType
	Status       TransactionStatus
	Amount       int64 // cents; negative for refunds
	Currency     string
	Gateway      string // stripe | paypal | free
	GatewayTxnID string
	Response     map[string]interface{} // raw gateway payload, JSONB in the DB
	FailReason   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewTransaction(orderID string, typ TransactionType, amount int64, currency, gateway, gatewayTxnID string) *Transaction {
	now := time.Now()
	return &Transaction{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		Type:         typ,
		Status:       TransactionStatusPending,
		Amount:       amount,
		Currency:     currency,
		Gateway:      gateway,
		GatewayTxnID: gatewayTxnID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
