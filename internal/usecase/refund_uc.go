// File: internal/usecase/refund_uc.go
package usecase

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/adapter"
	"course-marketplace/internal/domain/ports/repository"
	"course-marketplace/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// refundWindow is how long after payment an order stays refundable.
const refundWindow = 30 * 24 * time.Hour

var _ RefundUseCase = (*refundUC)(nil)

type RefundUseCase interface {
	// Refund calls the provider first and only then mutates local state, so a
	// provider failure leaves the order completed and the refund retryable.
	Refund(ctx context.Context, orderID string, amount int64, reason, actorID string) (*model.Order, error)
}

type refundUC struct {
	orders       repository.OrderRepository
	transactions repository.TransactionRepository
	enrollUC     EnrollmentUseCase
	providers    map[string]adapter.PaymentProvider
	tm           repository.TransactionManager
	currency     string
	log          *zerolog.Logger
}

func NewRefundUseCase(
	orders repository.OrderRepository,
	transactions repository.TransactionRepository,
	enrollUC EnrollmentUseCase,
	providers map[string]adapter.PaymentProvider,
	tm repository.TransactionManager,
	currency string,
	logger *zerolog.Logger,
) *refundUC {
	return &refundUC{
		orders:       orders,
		transactions: transactions,
		enrollUC:     enrollUC,
		providers:    providers,
		tm:           tm,
		currency:     currency,
		log:          logger,
	}
}

func (u *refundUC) Refund(ctx context.Context, orderID string, amount int64, reason, actorID string) (*model.Order, error) {
	o, err := u.orders.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusCompleted {
		return nil, domain.ErrOrderNotCompleted
	}
	if o.PaidAt == nil || time.Since(*o.PaidAt) > refundWindow {
		return nil, domain.ErrRefundWindowClosed
	}
	if amount <= 0 || amount > o.Total {
		return nil, domain.ErrRefundAmountExceedsTotal
	}

	gatewayTxnID, err := u.paymentTxnID(ctx, o)
	if err != nil {
		return nil, err
	}

	var refundID string
	if o.PaymentMethod != model.PaymentMethodFree {
		p, ok := u.providers[string(o.PaymentMethod)]
		if !ok {
			return nil, domain.ErrProviderUnavailable
		}
		refundID, err = p.CreateRefund(ctx, gatewayTxnID, amount, reason)
		if err != nil {
			// No local state was touched: the order stays completed, retryable.
			metrics.IncRefund(string(o.PaymentMethod), "error")
			return nil, err
		}
	}

	record := &model.RefundRecord{
		Amount:     amount,
		Reason:     reason,
		RefundedAt: time.Now(),
		ActorID:    actorID,
		ProviderID: refundID,
	}

	var wonRace bool
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Conditional transition: a concurrent refund that landed between the
		// status read above and here gets rows=0, and this caller must not
		// write a second refund transaction or decrement counters again.
		ok, err := u.orders.MarkRefundedIfCompleted(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		wonRace = true
		if err := u.orders.AttachRefund(ctx, tx, o.ID, record); err != nil {
			return err
		}

		txn := model.NewTransaction(o.ID, model.TransactionTypeRefund, -amount, u.currency, string(o.PaymentMethod), refundTxnID(refundID, gatewayTxnID))
		txn.Status = model.TransactionStatusSucceeded
		if err := u.transactions.Upsert(ctx, tx, txn); err != nil {
			return err
		}

		for _, courseID := range o.CourseIDs {
			if err := u.enrollUC.RevokeOnRefund(ctx, tx, o.UserID, courseID); err != nil {
				u.log.Warn().Err(err).Str("order_id", o.ID).Str("course_id", courseID).
					Msg("enrollment revoke failed on refund")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !wonRace {
		metrics.IncRefund(string(o.PaymentMethod), "duplicate")
		fresh, ferr := u.orders.FindByID(ctx, nil, o.ID)
		if ferr == nil {
			return fresh, nil
		}
		return o, nil
	}

	metrics.IncRefund(string(o.PaymentMethod), "refunded")
	o.Status = model.OrderStatusRefunded
	o.Refund = record
	return o, nil
}

// paymentTxnID finds the gateway transaction id of the successful payment.
func (u *refundUC) paymentTxnID(ctx context.Context, o *model.Order) (string, error) {
	txns, err := u.transactions.ListByOrder(ctx, nil, o.ID)
	if err != nil {
		return "", err
	}
	for _, t := range txns {
		if t.Type == model.TransactionTypePayment && t.Status == model.TransactionStatusSucceeded {
			return t.GatewayTxnID, nil
		}
	}
	// Fall back to the session id; Stripe resolves refunds through it too.
	return o.PaymentIntentID, nil
}

func refundTxnID(refundID, gatewayTxnID string) string {
	if refundID != "" {
		return refundID
	}
	return "refund_" + gatewayTxnID
}
