// File: internal/usecase/order_uc.go
package usecase

import (
	"context"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
)

var _ OrderUseCase = (*orderUC)(nil)

// OrderUseCase serves read access to orders and their invoices with
// ownership enforcement.
type OrderUseCase interface {
	Get(ctx context.Context, orderID, actorID string, admin bool) (*model.Order, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Order, error)
	Invoice(ctx context.Context, orderID, actorID string, admin bool) (*model.Invoice, error)
}

type orderUC struct {
	orders   repository.OrderRepository
	invoices repository.InvoiceRepository
}

func NewOrderUseCase(orders repository.OrderRepository, invoices repository.InvoiceRepository) *orderUC {
	return &orderUC{orders: orders, invoices: invoices}
}

func (u *orderUC) Get(ctx context.Context, orderID, actorID string, admin bool) (*model.Order, error) {
	o, err := u.orders.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != actorID {
		return nil, domain.ErrPermissionDenied
	}
	return o, nil
}

func (u *orderUC) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Order, error) {
	return u.orders.ListByUser(ctx, nil, userID, offset, limit)
}

func (u *orderUC) Invoice(ctx context.Context, orderID, actorID string, admin bool) (*model.Invoice, error) {
	o, err := u.orders.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != actorID {
		return nil, domain.ErrPermissionDenied
	}
	return u.invoices.FindByOrderID(ctx, nil, o.ID)
}
