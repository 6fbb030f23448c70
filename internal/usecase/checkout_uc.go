// File: internal/usecase/checkout_uc.go
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
	"course-marketplace/internal/infra/security"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// taxPercent is the flat tax applied after the discount on every checkout.
// Order of operations (discount before tax) is a deliberate rule:
// total = (subtotal - discount) * 1.08.
const taxPercent = 8

// orderNumberRetries bounds the suffix counter used to re-resolve an order
// number collision.
const orderNumberRetries = 5

var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutInput struct {
	UserID     string // authenticated path; empty for guest
	Email      string // guest identity
	Name       string
	CourseIDs  []string
	Method     model.PaymentMethod
	CouponCode string
	Billing    *model.BillingAddress
}

type CheckoutResult struct {
	OrderID     string
	OrderNumber string
	SessionID   string
	RedirectURL string
	Free        bool
	NewAccount  bool
}

type CheckoutUseCase interface {
	// Initiate produces exactly one Order and one provider session for an
	// authenticated cart, returning the redirect handle.
	Initiate(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	// GuestCheckout resolves or provisions the account for the checkout email,
	// then runs the same flow.
	GuestCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
}

type checkoutUC struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	courses    repository.CourseRepository
	couponUC   CouponUseCase
	paymentUC  PaymentUseCase
	providers  map[string]adapter.PaymentProvider
	tm         repository.TransactionManager
	successURL string
	cancelURL  string
	log        *zerolog.Logger
}

func NewCheckoutUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	couponUC CouponUseCase,
	paymentUC PaymentUseCase,
	providers map[string]adapter.PaymentProvider,
	tm repository.TransactionManager,
	successURL, cancelURL string,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		orders:     orders,
		users:      users,
		courses:    courses,
		couponUC:   couponUC,
		paymentUC:  paymentUC,
		providers:  providers,
		tm:         tm,
		successURL: successURL,
		cancelURL:  cancelURL,
		log:        logger,
	}
}

func (u *checkoutUC) Initiate(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if in.UserID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.initiate(ctx, in, false, "")
}

func (u *checkoutUC) GuestCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}

	user, err := u.users.FindByEmail(ctx, nil, email)
	newAccount := false
	tempPassword := ""
	if err == domain.ErrNotFound {
		// No account for this email: provision one with a generated password.
		// Trust is established by payment, so the email starts out verified.
		tempPassword, err = security.GenerateTempPassword(12)
		if err != nil {
			return nil, err
		}
		hash, err := security.HashPassword(tempPassword)
		if err != nil {
			return nil, err
		}
		user, err = model.NewUser(email, in.Name, hash)
		if err != nil {
			return nil, err
		}
		user.EmailVerified = true
		user.IsGuest = true
		if err := u.users.Save(ctx, nil, user); err != nil {
			return nil, err
		}
		newAccount = true
	} else if err != nil {
		return nil, err
	}

	in.UserID = user.ID
	return u.initiate(ctx, in, newAccount, tempPassword)
}

func (u *checkoutUC) initiate(ctx context.Context, in CheckoutInput, newAccount bool, tempPassword string) (*CheckoutResult, error) {
	if len(in.CourseIDs) == 0 {
		metrics.IncCheckout(string(in.Method), "rejected")
		return nil, domain.ErrEmptyCart
	}
	// A course can only be bought once per order; a duplicate entry is a
	// malformed cart, not a missing course.
	seen := make(map[string]struct{}, len(in.CourseIDs))
	for _, id := range in.CourseIDs {
		if _, dup := seen[id]; dup {
			metrics.IncCheckout(string(in.Method), "rejected")
			return nil, domain.ErrInvalidArgument
		}
		seen[id] = struct{}{}
	}

	courses, err := u.courses.ListByIDs(ctx, nil, in.CourseIDs)
	if err != nil {
		return nil, err
	}
	priced := make(map[string]*model.Course, len(courses))
	var subtotal int64
	for _, c := range courses {
		priced[c.ID] = c
		subtotal += c.Price
	}
	if len(priced) != len(in.CourseIDs) {
		return nil, domain.ErrNotFound
	}

	// Coupon validation aborts before any order exists.
	var coupon *model.Coupon
	var discount int64
	if in.CouponCode != "" {
		coupon, discount, err = u.couponUC.Validate(ctx, nil, in.CouponCode, subtotal)
		if err != nil {
			metrics.IncCheckout(string(in.Method), "rejected")
			return nil, err
		}
	}

	tax := (subtotal - discount) * taxPercent / 100
	total := subtotal - discount + tax

	o, err := model.NewOrder(in.UserID, in.CourseIDs, subtotal, discount, tax, total, in.Method)
	if err != nil {
		return nil, err
	}
	o.Billing = in.Billing
	o.GuestNewUser = newAccount
	o.TempPassword = tempPassword
	if coupon != nil {
		o.CouponID = &coupon.ID
	}
	if total <= 0 {
		o.PaymentMethod = model.PaymentMethodFree
	}

	if err := u.persistNewOrder(ctx, o, coupon); err != nil {
		metrics.IncCheckout(string(in.Method), "error")
		return nil, err
	}

	if total <= 0 {
		return u.completeFreeOrder(ctx, o, newAccount)
	}

	provider, ok := u.providers[string(in.Method)]
	if !ok {
		return nil, domain.ErrProviderUnavailable
	}

	session, err := provider.CreateCheckoutSession(ctx,
		u.buildLineItems(ctx, o),
		u.successURL, u.cancelURL,
		map[string]string{"order_id": o.ID, "order_number": o.Number},
	)
	if err != nil {
		metrics.IncCheckout(string(in.Method), "error")
		return nil, err
	}

	// The session id is the join key every later trigger resolves the order
	// by; losing this write means a session the system can never locate.
	if err := u.orders.SetPaymentIntentID(ctx, nil, o.ID, session.SessionID); err != nil {
		u.log.Error().Err(err).Str("order_id", o.ID).Str("session_id", session.SessionID).
			Msg("fatal: failed to persist payment intent id")
		return nil, fmt.Errorf("persist payment intent: %w", err)
	}
	if err := u.orders.UpdateStatus(ctx, nil, o.ID, model.OrderStatusProcessing); err != nil {
		u.log.Warn().Err(err).Str("order_id", o.ID).Msg("failed to mark order processing")
	}

	metrics.IncCheckout(string(in.Method), "created")
	return &CheckoutResult{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		SessionID:   session.SessionID,
		RedirectURL: session.RedirectURL,
		NewAccount:  newAccount,
	}, nil
}

// persistNewOrder allocates a monotonic order number and saves the order and
// coupon usage atomically. A number collision is re-resolved with a suffix
// counter rather than failing the checkout.
func (u *checkoutUC) persistNewOrder(ctx context.Context, o *model.Order, coupon *model.Coupon) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		seq, err := u.orders.NextSequence(ctx, tx)
		if err != nil {
			return err
		}
		base := fmt.Sprintf("ORD-%d", seq)
		o.Number = base
		for attempt := 0; ; attempt++ {
			err = u.orders.Save(ctx, tx, o)
			if err == nil {
				break
			}
			if err != domain.ErrAlreadyExists || attempt >= orderNumberRetries {
				return err
			}
			o.Number = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		if coupon != nil {
			if err := u.couponUC.MarkApplied(ctx, tx, coupon.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// completeFreeOrder short-circuits a fully-discounted checkout: no provider
// call is made, a fabricated intent id (recognizably free) is attached and the
// full post-completion sequence runs inline.
func (u *checkoutUC) completeFreeOrder(ctx context.Context, o *model.Order, newAccount bool) (*CheckoutResult, error) {
	intentID := "free_" + ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
	if err := u.orders.SetPaymentIntentID(ctx, nil, o.ID, intentID); err != nil {
		return nil, fmt.Errorf("persist payment intent: %w", err)
	}
	o.PaymentIntentID = intentID

	if _, err := u.paymentUC.CompleteOrder(ctx, intentID, intentID, map[string]string{"order_id": o.ID}); err != nil {
		return nil, err
	}

	metrics.IncCheckout("free", "free")
	return &CheckoutResult{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		SessionID:   intentID,
		RedirectURL: u.successURL,
		Free:        true,
		NewAccount:  newAccount,
	}, nil
}

// buildLineItems resolves course names defensively: a failed per-item lookup
// falls back to a deterministic placeholder derived from the item id instead
// of aborting the whole checkout.
func (u *checkoutUC) buildLineItems(ctx context.Context, o *model.Order) []adapter.LineItem {
	items := make([]adapter.LineItem, 0, len(o.CourseIDs))
	for i, courseID := range o.CourseIDs {
		name := "Course " + shortID(courseID)
		if c, err := u.courses.FindByID(ctx, nil, courseID); err == nil && c.Title != "" {
			name = c.Title
		} else if err != nil {
			u.log.Warn().Err(err).Str("course_id", courseID).Msg("line item name lookup failed, using placeholder")
		}
		items = append(items, adapter.LineItem{
			Name:     name,
			Amount:   shareOf(o.Total, len(o.CourseIDs), i),
			Quantity: 1,
		})
	}
	return items
}
