package repository

import (
	"context"

	"course-marketplace/internal/domain/model"
)

type TransactionRepository interface {
	// Upsert saves by gateway transaction id: retried webhooks update the
	// existing row instead of duplicating it.
	Upsert(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByGatewayTxnID(ctx context.Context, tx Tx, gatewayTxnID string) (*model.Transaction, error)
	ListByOrder(ctx context.Context, tx Tx, orderID string) ([]*model.Transaction, error)
	SumRevenueSince(ctx context.Context, tx Tx, period string) (int64, error)
}
