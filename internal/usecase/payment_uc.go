// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/adapter"
	"course-marketplace/internal/domain/ports/repository"
	"course-marketplace/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// PaymentUseCase drives order completion. Webhook delivery, the client-side
// verify poll and the guest verify call all converge on CompleteOrder, which
// is idempotent: whichever trigger observes success first completes the order
// exactly once, every later trigger returns success without side effects.
type PaymentUseCase interface {
	CompleteOrder(ctx context.Context, paymentIntentID, gatewayTxnID string, metadata map[string]string) (*model.Order, error)
	FailOrder(ctx context.Context, paymentIntentID, gatewayTxnID, reason string, metadata map[string]string) error
	VerifySession(ctx context.Context, sessionID, userID string) (*model.Order, error)
	VerifyGuestSession(ctx context.Context, sessionID, email string) (*model.Order, error)
	HandleWebhookEvent(ctx context.Context, gateway string, ev *adapter.WebhookEvent) error
	// Reconcile re-polls a stale pending order against its provider through
	// the same idempotent completion path.
	Reconcile(ctx context.Context, o *model.Order) error
}

type paymentUC struct {
	orders       repository.OrderRepository
	transactions repository.TransactionRepository
	users        repository.UserRepository
	invoiceUC    InvoiceUseCase
	enrollUC     EnrollmentUseCase
	providers    map[string]adapter.PaymentProvider
	mailer       adapter.Mailer
	tm           repository.TransactionManager
	currency     string
	log          *zerolog.Logger
}

func NewPaymentUseCase(
	orders repository.OrderRepository,
	transactions repository.TransactionRepository,
	users repository.UserRepository,
	invoiceUC InvoiceUseCase,
	enrollUC EnrollmentUseCase,
	providers map[string]adapter.PaymentProvider,
	mailer adapter.Mailer,
	tm repository.TransactionManager,
	currency string,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		orders:       orders,
		transactions: transactions,
		users:        users,
		invoiceUC:    invoiceUC,
		enrollUC:     enrollUC,
		providers:    providers,
		mailer:       mailer,
		tm:           tm,
		currency:     currency,
		log:          logger,
	}
}

// resolveOrder looks an order up by payment intent id, falling back to the
// metadata-embedded order id. When recovered via metadata, the intent id is
// patched back onto the order so later triggers hit the primary path.
func (u *paymentUC) resolveOrder(ctx context.Context, paymentIntentID string, metadata map[string]string) (*model.Order, error) {
	o, err := u.orders.FindByPaymentIntentID(ctx, nil, paymentIntentID)
	if err == nil {
		return o, nil
	}
	if err != domain.ErrNotFound {
		return nil, err
	}
	orderID := metadata["order_id"]
	if orderID == "" {
		return nil, domain.ErrNotFound
	}
	o, err = u.orders.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentIntentID != paymentIntentID {
		if err := u.orders.SetPaymentIntentID(ctx, nil, o.ID, paymentIntentID); err != nil {
			u.log.Warn().Err(err).Str("order_id", o.ID).Msg("failed to patch payment intent id onto recovered order")
		} else {
			o.PaymentIntentID = paymentIntentID
		}
	}
	return o, nil
}

func (u *paymentUC) CompleteOrder(ctx context.Context, paymentIntentID, gatewayTxnID string, metadata map[string]string) (*model.Order, error) {
	o, err := u.resolveOrder(ctx, paymentIntentID, metadata)
	if err != nil {
		return nil, err
	}

	// Idempotence guard: a completed order is never re-processed.
	if o.Status == model.OrderStatusCompleted {
		metrics.IncPayment(string(o.PaymentMethod), "duplicate")
		return o, nil
	}

	if gatewayTxnID == "" {
		gatewayTxnID = paymentIntentID
	}
	now := time.Now()
	var wonRace bool

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Conditional transition: only one concurrent caller gets rows=1.
		// Zero rows affected means someone else already completed it.
		ok, err := u.orders.MarkCompletedIfPending(ctx, tx, o.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		wonRace = true
		o.Status = model.OrderStatusCompleted
		o.PaidAt = &now

		txn := model.NewTransaction(o.ID, model.TransactionTypePayment, o.Total, u.currency, string(o.PaymentMethod), gatewayTxnID)
		txn.Status = model.TransactionStatusSucceeded
		if err := u.transactions.Upsert(ctx, tx, txn); err != nil {
			return fmt.Errorf("record payment transaction: %w", err)
		}

		if _, err := u.invoiceUC.GenerateForOrder(ctx, tx, o, now); err != nil {
			return fmt.Errorf("generate invoice: %w", err)
		}

		// A failure enrolling one course must not abort enrollment of the
		// others; partial success is logged, not swallowed silently.
		var failed int
		for _, courseID := range o.CourseIDs {
			amount := shareOf(o.Total, len(o.CourseIDs), indexOf(o.CourseIDs, courseID))
			if _, err := u.enrollUC.EnrollOnPurchase(ctx, tx, o, courseID, amount); err != nil {
				failed++
				u.log.Error().Err(err).
					Str("order_id", o.ID).
					Str("course_id", courseID).
					Msg("enrollment failed for purchased course")
			}
		}
		if failed == len(o.CourseIDs) && failed > 0 {
			return fmt.Errorf("all %d enrollments failed for order %s", failed, o.ID)
		}
		return nil
	})
	if err != nil {
		metrics.IncPayment(string(o.PaymentMethod), "error")
		return nil, err
	}
	if !wonRace {
		metrics.IncPayment(string(o.PaymentMethod), "duplicate")
		fresh, ferr := u.orders.FindByID(ctx, nil, o.ID)
		if ferr == nil {
			return fresh, nil
		}
		return o, nil
	}

	metrics.IncPayment(string(o.PaymentMethod), "completed")
	metrics.AddPaymentRevenue(u.currency, o.Total)

	u.dispatchConfirmationMail(o)
	return o, nil
}

// dispatchConfirmationMail is fire-and-forget: failures are logged and never
// roll back the completed order.
func (u *paymentUC) dispatchConfirmationMail(o *model.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := u.users.FindByID(ctx, nil, o.UserID)
		if err != nil {
			u.log.Error().Err(err).Str("order_id", o.ID).Msg("confirmation mail: user lookup failed")
			return
		}

		template := adapter.MailTemplatePurchaseConfirmation
		mctx := map[string]string{
			"name":         user.Name,
			"order_number": o.Number,
			"total":        fmt.Sprintf("%.2f", float64(o.Total)/100),
		}
		if o.GuestNewUser && o.TempPassword != "" {
			template = adapter.MailTemplateWelcomeCredentials
			mctx["email"] = user.Email
			mctx["password"] = o.TempPassword
		}

		if err := u.mailer.SendMail(ctx, adapter.MailMessage{
			To:       user.Email,
			Subject:  "Your order " + o.Number,
			Template: template,
			Context:  mctx,
		}); err != nil {
			metrics.IncMail(template, "error")
			u.log.Error().Err(err).Str("order_id", o.ID).Msg("confirmation mail send failed")
			return
		}
		metrics.IncMail(template, "sent")

		// The temporary password has served its purpose; drop it.
		if o.TempPassword != "" {
			if err := u.orders.ClearTempPassword(ctx, nil, o.ID); err != nil {
				u.log.Warn().Err(err).Str("order_id", o.ID).Msg("failed to clear temp password")
			}
		}
	}()
}

// FailOrder gets the same metadata fallback as CompleteOrder: a PayPal denial
// may arrive before the capture's order id is linked, leaving only custom_id.
func (u *paymentUC) FailOrder(ctx context.Context, paymentIntentID, gatewayTxnID, reason string, metadata map[string]string) error {
	o, err := u.resolveOrder(ctx, paymentIntentID, metadata)
	if err != nil {
		return err
	}
	if o.IsTerminal() {
		// Completion is a one-way fact; a late failure report is ignored.
		return nil
	}
	if gatewayTxnID == "" {
		gatewayTxnID = paymentIntentID
	}

	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.orders.UpdateStatus(ctx, tx, o.ID, model.OrderStatusFailed); err != nil {
			return err
		}
		txn := model.NewTransaction(o.ID, model.TransactionTypePayment, o.Total, u.currency, string(o.PaymentMethod), gatewayTxnID)
		txn.Status = model.TransactionStatusFailed
		txn.FailReason = reason
		if err := u.transactions.Upsert(ctx, tx, txn); err != nil {
			return err
		}
		metrics.IncPayment(string(o.PaymentMethod), "failed")
		return nil
	})
}

func (u *paymentUC) VerifySession(ctx context.Context, sessionID, userID string) (*model.Order, error) {
	o, err := u.orders.FindByPaymentIntentID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrPermissionDenied
	}
	return u.verifyAgainstProvider(ctx, o)
}

func (u *paymentUC) VerifyGuestSession(ctx context.Context, sessionID, email string) (*model.Order, error) {
	o, err := u.orders.FindByPaymentIntentID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := u.users.FindByID(ctx, nil, o.UserID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, strings.TrimSpace(email)) {
		return nil, domain.ErrPermissionDenied
	}
	return u.verifyAgainstProvider(ctx, o)
}

func (u *paymentUC) verifyAgainstProvider(ctx context.Context, o *model.Order) (*model.Order, error) {
	if o.Status == model.OrderStatusCompleted {
		return o, nil
	}
	if o.PaymentMethod == model.PaymentMethodFree {
		// Free orders complete at checkout; a pending one here is a bug.
		return o, nil
	}

	p, ok := u.providers[string(o.PaymentMethod)]
	if !ok {
		return nil, domain.ErrProviderUnavailable
	}
	st, err := p.RetrieveSession(ctx, o.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if !st.Paid {
		// PayPal approval still needs an explicit capture; Stripe's capture
		// is a no-op retrieve.
		st, err = p.CaptureSession(ctx, o.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		if !st.Paid {
			return nil, domain.ErrSessionNotPaid
		}
	}
	return u.CompleteOrder(ctx, o.PaymentIntentID, st.GatewayTxnID, st.Metadata)
}

func (u *paymentUC) HandleWebhookEvent(ctx context.Context, gateway string, ev *adapter.WebhookEvent) error {
	metrics.IncWebhookEvent(gateway, ev.Type)

	switch ev.Type {
	case "session.completed":
		_, err := u.CompleteOrder(ctx, ev.PaymentIntentID, ev.GatewayTxnID, ev.Metadata)
		return err
	case "payment.failed":
		return u.FailOrder(ctx, ev.PaymentIntentID, ev.GatewayTxnID, ev.FailReason, ev.Metadata)
	default:
		u.log.Debug().Str("gateway", gateway).Str("type", ev.Type).Msg("ignoring webhook event")
		return nil
	}
}

func (u *paymentUC) Reconcile(ctx context.Context, o *model.Order) error {
	_, err := u.verifyAgainstProvider(ctx, o)
	if err == domain.ErrSessionNotPaid {
		// Still awaiting the user; not an error for the reconciler.
		return nil
	}
	return err
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return 0
}
