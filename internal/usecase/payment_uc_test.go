//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/adapter"
	"course-marketplace/internal/domain/ports/repository"
	"course-marketplace/internal/usecase"
)

type paymentDeps struct {
	orders   *MockOrderRepo
	txns     *MockTransactionRepo
	users    *MockUserRepo
	courses  *MockCourseRepo
	invoices *MockInvoiceRepo
	enrolls  *MockEnrollmentRepo
	provider *MockPaymentProvider
	mailer   *MockMailer
	uc       usecase.PaymentUseCase
}

func newPaymentDeps() *paymentDeps {
	d := &paymentDeps{
		orders:   NewMockOrderRepo(),
		txns:     NewMockTransactionRepo(),
		users:    NewMockUserRepo(),
		courses:  NewMockCourseRepo(),
		invoices: NewMockInvoiceRepo(),
		enrolls:  NewMockEnrollmentRepo(),
		provider: &MockPaymentProvider{},
		mailer:   NewMockMailer(),
	}
	log := newTestLogger()
	tm := &MockTxManager{}
	providers := map[string]adapter.PaymentProvider{"stripe": d.provider}

	enrollUC := usecase.NewEnrollmentUseCase(d.enrolls, d.courses, log)
	invoiceUC := usecase.NewInvoiceUseCase(d.invoices, d.courses, log)
	d.uc = usecase.NewPaymentUseCase(d.orders, d.txns, d.users, invoiceUC, enrollUC, providers, d.mailer, tm, "usd", log)
	return d
}

// seedProcessingOrder creates a user, a course and a processing order with the
// given payment intent id attached.
func (d *paymentDeps) seedProcessingOrder(t *testing.T, intentID string) *model.Order {
	t.Helper()
	ctx := context.Background()

	u, err := model.NewUser("buyer@test.dev", "Buyer", "hash")
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if err := d.users.Save(ctx, nil, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	if err := d.courses.Save(ctx, nil, &model.Course{ID: "c1", Title: "Go Basics", Price: 5000, Published: true}); err != nil {
		t.Fatalf("save course: %v", err)
	}

	o, err := model.NewOrder(u.ID, []string{"c1"}, 5000, 0, 400, 5400, model.PaymentMethodStripe)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	o.Number = "ORD-1"
	o.Status = model.OrderStatusProcessing
	o.PaymentIntentID = intentID
	if err := d.orders.Save(ctx, nil, o); err != nil {
		t.Fatalf("save order: %v", err)
	}
	return o
}

func TestCompleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("completes once and is idempotent on replay", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")

		got, err := d.uc.CompleteOrder(ctx, "sess_1", "ch_1", nil)
		if err != nil {
			t.Fatalf("first complete: %v", err)
		}
		if got.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s, want completed", got.Status)
		}
		if got.PaidAt == nil {
			t.Fatal("paid_at must be stamped")
		}

		// Replay: same webhook delivered twice.
		got2, err := d.uc.CompleteOrder(ctx, "sess_1", "ch_1", nil)
		if err != nil {
			t.Fatalf("second complete: %v", err)
		}
		if got2.Status != model.OrderStatusCompleted {
			t.Fatalf("replay status = %s, want completed", got2.Status)
		}

		if d.txns.Count() != 1 {
			t.Fatalf("transactions = %d, want exactly 1", d.txns.Count())
		}
		if d.invoices.Count() != 1 {
			t.Fatalf("invoices = %d, want exactly 1", d.invoices.Count())
		}
		if d.enrolls.Count() != 1 {
			t.Fatalf("enrollments = %d, want exactly 1", d.enrolls.Count())
		}

		txn, err := d.txns.FindByGatewayTxnID(ctx, nil, "ch_1")
		if err != nil {
			t.Fatalf("find txn: %v", err)
		}
		if txn.Status != model.TransactionStatusSucceeded || txn.Amount != o.Total {
			t.Fatalf("txn = %s/%d, want succeeded/%d", txn.Status, txn.Amount, o.Total)
		}

		c, err := d.courses.FindByID(ctx, nil, "c1")
		if err != nil {
			t.Fatalf("find course: %v", err)
		}
		if c.EnrollmentCount != 1 || c.Revenue != o.Total {
			t.Fatalf("course counters = %d/%d, want 1/%d", c.EnrollmentCount, c.Revenue, o.Total)
		}
	})

	t.Run("lost race leaves no side effects", func(t *testing.T) {
		d := newPaymentDeps()
		d.seedProcessingOrder(t, "sess_1")

		// Another trigger completes the order between the status read and the
		// conditional update.
		d.orders.MarkCompletedIfPendingFunc = func(_ context.Context, _ repository.Tx, _ string, _ time.Time) (bool, error) {
			return false, nil
		}

		_, err := d.uc.CompleteOrder(ctx, "sess_1", "ch_1", nil)
		if err != nil {
			t.Fatalf("lost race must not error: %v", err)
		}
		if d.txns.Count() != 0 {
			t.Fatalf("transactions = %d, want 0", d.txns.Count())
		}
		if d.invoices.Count() != 0 {
			t.Fatalf("invoices = %d, want 0", d.invoices.Count())
		}
		if d.enrolls.Count() != 0 {
			t.Fatalf("enrollments = %d, want 0", d.enrolls.Count())
		}
	})

	t.Run("resolves the order through metadata when the intent id is unknown", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "") // intent id write was lost

		got, err := d.uc.CompleteOrder(ctx, "sess_recovered", "ch_1", map[string]string{"order_id": o.ID})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if got.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s, want completed", got.Status)
		}
		// Intent id is patched back so later triggers hit the primary lookup.
		patched, err := d.orders.FindByPaymentIntentID(ctx, nil, "sess_recovered")
		if err != nil {
			t.Fatalf("patched lookup: %v", err)
		}
		if patched.ID != o.ID {
			t.Fatalf("patched order = %s, want %s", patched.ID, o.ID)
		}
	})

	t.Run("unknown intent and no metadata is not found", func(t *testing.T) {
		d := newPaymentDeps()
		_, err := d.uc.CompleteOrder(ctx, "sess_ghost", "ch_1", nil)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("sends a confirmation mail", func(t *testing.T) {
		d := newPaymentDeps()
		d.seedProcessingOrder(t, "sess_1")

		if _, err := d.uc.CompleteOrder(ctx, "sess_1", "ch_1", nil); err != nil {
			t.Fatalf("complete: %v", err)
		}

		select {
		case <-d.mailer.SentCh:
		case <-time.After(2 * time.Second):
			t.Fatal("confirmation mail never sent")
		}
		sent := d.mailer.SentMessages()
		if len(sent) != 1 {
			t.Fatalf("sent = %d, want 1", len(sent))
		}
		if sent[0].Template != adapter.MailTemplatePurchaseConfirmation {
			t.Fatalf("template = %q, want purchase confirmation", sent[0].Template)
		}
		if sent[0].To != "buyer@test.dev" {
			t.Fatalf("to = %q", sent[0].To)
		}
	})

	t.Run("guest order gets welcome credentials mail", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		o.GuestNewUser = true
		o.TempPassword = "s3cret-temp"
		if err := d.orders.Save(ctx, nil, o); err != nil {
			t.Fatalf("save order: %v", err)
		}

		if _, err := d.uc.CompleteOrder(ctx, "sess_1", "ch_1", nil); err != nil {
			t.Fatalf("complete: %v", err)
		}

		select {
		case <-d.mailer.SentCh:
		case <-time.After(2 * time.Second):
			t.Fatal("welcome mail never sent")
		}
		sent := d.mailer.SentMessages()
		if sent[0].Template != adapter.MailTemplateWelcomeCredentials {
			t.Fatalf("template = %q, want welcome credentials", sent[0].Template)
		}
		if sent[0].Context["password"] != "s3cret-temp" {
			t.Fatal("welcome mail must carry the temporary password")
		}

		// The password is dropped once the mail is out.
		deadline := time.Now().Add(2 * time.Second)
		for {
			fresh, err := d.orders.FindByID(ctx, nil, o.ID)
			if err != nil {
				t.Fatalf("find order: %v", err)
			}
			if fresh.TempPassword == "" {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("temp password never cleared")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}

func TestFailOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("marks a pending order failed with an audit transaction", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")

		if err := d.uc.FailOrder(ctx, "sess_1", "ch_1", "card_declined", nil); err != nil {
			t.Fatalf("fail order: %v", err)
		}
		fresh, err := d.orders.FindByID(ctx, nil, o.ID)
		if err != nil {
			t.Fatalf("find order: %v", err)
		}
		if fresh.Status != model.OrderStatusFailed {
			t.Fatalf("status = %s, want failed", fresh.Status)
		}
		txn, err := d.txns.FindByGatewayTxnID(ctx, nil, "ch_1")
		if err != nil {
			t.Fatalf("find txn: %v", err)
		}
		if txn.Status != model.TransactionStatusFailed || txn.FailReason != "card_declined" {
			t.Fatalf("txn = %s/%q", txn.Status, txn.FailReason)
		}
	})

	t.Run("resolves the order through metadata when the intent id is unknown", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "") // intent id write was lost

		err := d.uc.FailOrder(ctx, "PAYPAL-ORDER-1", "cap_1", "capture_denied", map[string]string{"order_id": o.ID})
		if err != nil {
			t.Fatalf("fail order: %v", err)
		}
		fresh, err := d.orders.FindByID(ctx, nil, o.ID)
		if err != nil {
			t.Fatalf("find order: %v", err)
		}
		if fresh.Status != model.OrderStatusFailed {
			t.Fatalf("status = %s, want failed", fresh.Status)
		}
	})

	t.Run("late failure report on a completed order is a no-op", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		if _, err := d.uc.CompleteOrder(ctx, "sess_1", "ch_1", nil); err != nil {
			t.Fatalf("complete: %v", err)
		}

		if err := d.uc.FailOrder(ctx, "sess_1", "ch_1", "expired", nil); err != nil {
			t.Fatalf("late fail must not error: %v", err)
		}
		fresh, err := d.orders.FindByID(ctx, nil, o.ID)
		if err != nil {
			t.Fatalf("find order: %v", err)
		}
		if fresh.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s, completion must stick", fresh.Status)
		}
	})
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a foreign user", func(t *testing.T) {
		d := newPaymentDeps()
		d.seedProcessingOrder(t, "sess_1")
		_, err := d.uc.VerifySession(ctx, "sess_1", "someone-else")
		if !errors.Is(err, domain.ErrPermissionDenied) {
			t.Fatalf("want ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("unpaid after capture attempt reports session not paid", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")

		_, err := d.uc.VerifySession(ctx, "sess_1", o.UserID)
		if !errors.Is(err, domain.ErrSessionNotPaid) {
			t.Fatalf("want ErrSessionNotPaid, got %v", err)
		}
		if d.provider.Retrieved != 1 || d.provider.Captured != 1 {
			t.Fatalf("provider calls = retrieve:%d capture:%d, want 1/1", d.provider.Retrieved, d.provider.Captured)
		}
	})

	t.Run("paid session completes the order", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		d.provider.RetrieveSessionFunc = func(_ context.Context, _ string) (*adapter.SessionStatus, error) {
			return &adapter.SessionStatus{Paid: true, AmountTotal: o.Total, GatewayTxnID: "ch_1"}, nil
		}

		got, err := d.uc.VerifySession(ctx, "sess_1", o.UserID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s, want completed", got.Status)
		}
		if d.provider.Captured != 0 {
			t.Fatalf("paid retrieve must skip capture, got %d captures", d.provider.Captured)
		}
	})

	t.Run("approval needing capture completes through capture", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		d.provider.CaptureSessionFunc = func(_ context.Context, _ string) (*adapter.SessionStatus, error) {
			return &adapter.SessionStatus{Paid: true, AmountTotal: o.Total, GatewayTxnID: "cap_1"}, nil
		}

		got, err := d.uc.VerifySession(ctx, "sess_1", o.UserID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s, want completed", got.Status)
		}
		if _, err := d.txns.FindByGatewayTxnID(ctx, nil, "cap_1"); err != nil {
			t.Fatalf("capture txn missing: %v", err)
		}
	})

	t.Run("already completed order verifies without provider calls", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		if _, err := d.uc.CompleteOrder(ctx, "sess_1", "ch_1", nil); err != nil {
			t.Fatalf("complete: %v", err)
		}
		retrievedBefore := d.provider.Retrieved

		got, err := d.uc.VerifySession(ctx, "sess_1", o.UserID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s", got.Status)
		}
		if d.provider.Retrieved != retrievedBefore {
			t.Fatal("completed order must not hit the provider")
		}
	})
}

func TestVerifyGuestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("matches the buyer email case-insensitively", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		d.provider.RetrieveSessionFunc = func(_ context.Context, _ string) (*adapter.SessionStatus, error) {
			return &adapter.SessionStatus{Paid: true, GatewayTxnID: "ch_1"}, nil
		}

		got, err := d.uc.VerifyGuestSession(ctx, "sess_1", "  BUYER@test.DEV ")
		if err != nil {
			t.Fatalf("guest verify: %v", err)
		}
		if got.ID != o.ID || got.Status != model.OrderStatusCompleted {
			t.Fatalf("order = %s/%s", got.ID, got.Status)
		}
	})

	t.Run("rejects a mismatched email", func(t *testing.T) {
		d := newPaymentDeps()
		d.seedProcessingOrder(t, "sess_1")
		_, err := d.uc.VerifyGuestSession(ctx, "sess_1", "attacker@test.dev")
		if !errors.Is(err, domain.ErrPermissionDenied) {
			t.Fatalf("want ErrPermissionDenied, got %v", err)
		}
		if d.provider.Retrieved != 0 {
			t.Fatal("provider must not be consulted for a rejected caller")
		}
	})
}

func TestHandleWebhookEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("session.completed completes the order", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")

		err := d.uc.HandleWebhookEvent(ctx, "stripe", &adapter.WebhookEvent{
			Type: "session.completed", PaymentIntentID: "sess_1", GatewayTxnID: "ch_1",
		})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		fresh, _ := d.orders.FindByID(ctx, nil, o.ID)
		if fresh.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s, want completed", fresh.Status)
		}
	})

	t.Run("payment.failed fails the order", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")

		err := d.uc.HandleWebhookEvent(ctx, "stripe", &adapter.WebhookEvent{
			Type: "payment.failed", PaymentIntentID: "sess_1", FailReason: "card_declined",
		})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		fresh, _ := d.orders.FindByID(ctx, nil, o.ID)
		if fresh.Status != model.OrderStatusFailed {
			t.Fatalf("status = %s, want failed", fresh.Status)
		}
	})

	t.Run("unknown event types are ignored", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")

		err := d.uc.HandleWebhookEvent(ctx, "paypal", &adapter.WebhookEvent{
			Type: "CHECKOUT.ORDER.APPROVED", PaymentIntentID: "sess_1",
		})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		fresh, _ := d.orders.FindByID(ctx, nil, o.ID)
		if fresh.Status != model.OrderStatusProcessing {
			t.Fatalf("status = %s, ignored event must not transition", fresh.Status)
		}
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("still-unpaid session is not an error", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		if err := d.uc.Reconcile(ctx, o); err != nil {
			t.Fatalf("reconcile must swallow not-paid: %v", err)
		}
	})

	t.Run("paid session completes through reconciliation", func(t *testing.T) {
		d := newPaymentDeps()
		o := d.seedProcessingOrder(t, "sess_1")
		d.provider.RetrieveSessionFunc = func(_ context.Context, _ string) (*adapter.SessionStatus, error) {
			return &adapter.SessionStatus{Paid: true, GatewayTxnID: "ch_1"}, nil
		}

		if err := d.uc.Reconcile(ctx, o); err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		fresh, _ := d.orders.FindByID(ctx, nil, o.ID)
		if fresh.Status != model.OrderStatusCompleted {
			t.Fatalf("status = %s, want completed", fresh.Status)
		}
	})
}
