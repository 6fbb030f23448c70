package repository

import (
	"context"

	"course-marketplace/internal/domain/model"
)

type InvoiceRepository interface {
	Save(ctx context.Context, tx Tx, inv *model.Invoice) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Invoice, error)
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Invoice, error)
}
