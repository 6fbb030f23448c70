package repository

import (
	"context"
	"time"

	"course-marketplace/internal/domain/model"
)

type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Order) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	FindByPaymentIntentID(ctx context.Context, tx Tx, intentID string) (*model.Order, error)
	FindByNumber(ctx context.Context, tx Tx, number string) (*model.Order, error)

	// NextSequence returns the running order count + 1, used to derive the
	// human-readable order number. Collisions are re-resolved by the caller
	// with a suffix counter.
	NextSequence(ctx context.Context, tx Tx) (int64, error)

	// SetPaymentIntentID persists the provider session id onto the order.
	// A failed write here is fatal to the checkout.
	SetPaymentIntentID(ctx context.Context, tx Tx, orderID, intentID string) error

	// MarkCompletedIfPending atomically transitions the order to completed
	// only from a non-terminal status, stamping paid_at. Zero rows affected
	// means someone else already completed (or terminally failed) it.
	MarkCompletedIfPending(ctx context.Context, tx Tx, orderID string, paidAt time.Time) (bool, error)

	// MarkRefundedIfCompleted atomically transitions the order to refunded
	// only from completed. Zero rows affected means a concurrent refund
	// already landed, so the caller must skip its side effects.
	MarkRefundedIfCompleted(ctx context.Context, tx Tx, orderID string) (bool, error)

	UpdateStatus(ctx context.Context, tx Tx, orderID string, status model.OrderStatus) error
	AttachRefund(ctx context.Context, tx Tx, orderID string, r *model.RefundRecord) error
	ClearTempPassword(ctx context.Context, tx Tx, orderID string) error

	// ListPendingOlderThan feeds the reconciler with stale checkouts.
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Order, error)

	ListByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Order, error)
}
