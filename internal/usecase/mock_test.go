//go:build !integration

package usecase_test

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/adapter"
	"course-marketplace/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Transaction manager
// =============================

type noTx struct{}

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, noTx{})
}

// =============================
// Repositories
// =============================

type MockOrderRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Order

	SaveFunc                    func(ctx context.Context, tx repository.Tx, o *model.Order) error
	MarkCompletedIfPendingFunc  func(ctx context.Context, tx repository.Tx, orderID string, paidAt time.Time) (bool, error)
	MarkRefundedIfCompletedFunc func(ctx context.Context, tx repository.Tx, orderID string) (bool, error)
	SetPaymentIntentIDFunc      func(ctx context.Context, tx repository.Tx, orderID, intentID string) error
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{store: make(map[string]*model.Order)}
}

func (m *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.ID != o.ID && existing.Number != "" && existing.Number == o.Number {
			return domain.ErrAlreadyExists
		}
	}
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) FindByPaymentIntentID(ctx context.Context, tx repository.Tx, intentID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.store {
		if o.PaymentIntentID == intentID && intentID != "" {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockOrderRepo) FindByNumber(ctx context.Context, tx repository.Tx, number string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.store {
		if o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockOrderRepo) NextSequence(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.store)) + 1, nil
}

func (m *MockOrderRepo) SetPaymentIntentID(ctx context.Context, tx repository.Tx, orderID, intentID string) error {
	if m.SetPaymentIntentIDFunc != nil {
		return m.SetPaymentIntentIDFunc(ctx, tx, orderID, intentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaymentIntentID = intentID
	return nil
}

func (m *MockOrderRepo) MarkCompletedIfPending(ctx context.Context, tx repository.Tx, orderID string, paidAt time.Time) (bool, error) {
	if m.MarkCompletedIfPendingFunc != nil {
		return m.MarkCompletedIfPendingFunc(ctx, tx, orderID, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return false, nil
	}
	if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusProcessing {
		return false, nil
	}
	o.Status = model.OrderStatusCompleted
	pa := paidAt
	o.PaidAt = &pa
	return true, nil
}

func (m *MockOrderRepo) MarkRefundedIfCompleted(ctx context.Context, tx repository.Tx, orderID string) (bool, error) {
	if m.MarkRefundedIfCompletedFunc != nil {
		return m.MarkRefundedIfCompletedFunc(ctx, tx, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return false, nil
	}
	if o.Status != model.OrderStatusCompleted {
		return false, nil
	}
	o.Status = model.OrderStatusRefunded
	return true, nil
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *MockOrderRepo) AttachRefund(ctx context.Context, tx repository.Tx, orderID string, r *model.RefundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *r
	o.Refund = &cp
	return nil
}

func (m *MockOrderRepo) ClearTempPassword(ctx context.Context, tx repository.Tx, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.TempPassword = ""
	return nil
}

func (m *MockOrderRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if (o.Status == model.OrderStatusPending || o.Status == model.OrderStatusProcessing) && o.CreatedAt.Before(olderThan) {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- transactions ----

type MockTransactionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Transaction // by gateway txn id

	UpsertFunc func(ctx context.Context, tx repository.Tx, t *model.Transaction) error
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{store: make(map[string]*model.Transaction)}
}

func (m *MockTransactionRepo) Upsert(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.GatewayTxnID] = &cp
	return nil
}

func (m *MockTransactionRepo) FindByGatewayTxnID(ctx context.Context, tx repository.Tx, gatewayTxnID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[gatewayTxnID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTransactionRepo) ListByOrder(ctx context.Context, tx repository.Tx, orderID string) ([]*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Transaction
	for _, t := range m.store {
		if t.OrderID == orderID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockTransactionRepo) SumRevenueSince(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, t := range m.store {
		if t.Status == model.TransactionStatusSucceeded {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (m *MockTransactionRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// ---- invoices ----

type MockInvoiceRepo struct {
	mu      sync.RWMutex
	byOrder map[string]*model.Invoice

	SaveFunc func(ctx context.Context, tx repository.Tx, inv *model.Invoice) error
}

var _ repository.InvoiceRepository = (*MockInvoiceRepo)(nil)

func NewMockInvoiceRepo() *MockInvoiceRepo {
	return &MockInvoiceRepo{byOrder: make(map[string]*model.Invoice)}
}

func (m *MockInvoiceRepo) Save(ctx context.Context, tx repository.Tx, inv *model.Invoice) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, inv)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byOrder[inv.OrderID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *inv
	m.byOrder[inv.OrderID] = &cp
	return nil
}

func (m *MockInvoiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inv := range m.byOrder {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockInvoiceRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.byOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MockInvoiceRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byOrder)
}

// ---- enrollments ----

type MockEnrollmentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Enrollment // key: userID|courseID

	SaveFunc func(ctx context.Context, tx repository.Tx, e *model.Enrollment) error
}

var _ repository.EnrollmentRepository = (*MockEnrollmentRepo)(nil)

func NewMockEnrollmentRepo() *MockEnrollmentRepo {
	return &MockEnrollmentRepo{store: make(map[string]*model.Enrollment)}
}

func enrollKey(userID, courseID string) string { return userID + "|" + courseID }

func (m *MockEnrollmentRepo) Save(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := enrollKey(e.UserID, e.CourseID)
	if existing, ok := m.store[key]; ok && existing.ID != e.ID {
		return domain.ErrAlreadyExists
	}
	cp := *e
	m.store[key] = &cp
	return nil
}

func (m *MockEnrollmentRepo) FindByUserAndCourse(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[enrollKey(userID, courseID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockEnrollmentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Enrollment
	for _, e := range m.store {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEnrollmentRepo) CountAll(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, e := range m.store {
		if e.HasAccess {
			cnt++
		}
	}
	return cnt, nil
}

func (m *MockEnrollmentRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// ---- users ----

type MockUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User

	SaveFunc func(ctx context.Context, tx repository.Tx, u *model.User) error
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// ---- courses ----

type MockCourseRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Course
}

var _ repository.CourseRepository = (*MockCourseRepo)(nil)

func NewMockCourseRepo() *MockCourseRepo {
	return &MockCourseRepo{store: make(map[string]*model.Course)}
}

func (m *MockCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCourseRepo) ListByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Course
	for _, id := range ids {
		if c, ok := m.store[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCourseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCourseRepo) IncrementEnrollment(ctx context.Context, tx repository.Tx, courseID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[courseID]
	if !ok {
		return domain.ErrNotFound
	}
	c.EnrollmentCount += delta
	if c.EnrollmentCount < 0 {
		c.EnrollmentCount = 0
	}
	return nil
}

func (m *MockCourseRepo) AddRevenue(ctx context.Context, tx repository.Tx, courseID string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[courseID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Revenue += amount
	return nil
}

// ---- coupons ----

type MockCouponRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Coupon // by code
}

var _ repository.CouponRepository = (*MockCouponRepo)(nil)

func NewMockCouponRepo() *MockCouponRepo {
	return &MockCouponRepo{store: make(map[string]*model.Coupon)}
}

func (m *MockCouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCouponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[strings.ToUpper(c.Code)] = &cp
	return nil
}

func (m *MockCouponRepo) IncrementUsage(ctx context.Context, tx repository.Tx, couponID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.store {
		if c.ID == couponID {
			c.UsageCount++
			return nil
		}
	}
	return domain.ErrNotFound
}

// ---- customer profiles ----

type MockCustomerProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]*model.CustomerProfile      // key: userID|gateway
	methods  map[string][]*model.SavedPaymentMethod // by profile id
}

var _ repository.CustomerProfileRepository = (*MockCustomerProfileRepo)(nil)

func NewMockCustomerProfileRepo() *MockCustomerProfileRepo {
	return &MockCustomerProfileRepo{
		profiles: make(map[string]*model.CustomerProfile),
		methods:  make(map[string][]*model.SavedPaymentMethod),
	}
}

func (m *MockCustomerProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.CustomerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.UserID+"|"+p.Gateway] = &cp
	return nil
}

func (m *MockCustomerProfileRepo) FindByUser(ctx context.Context, tx repository.Tx, userID, gateway string) (*model.CustomerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID+"|"+gateway]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockCustomerProfileRepo) SaveMethod(ctx context.Context, tx repository.Tx, pm *model.SavedPaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pm
	m.methods[pm.ProfileID] = append(m.methods[pm.ProfileID], &cp)
	return nil
}

func (m *MockCustomerProfileRepo) ListMethods(ctx context.Context, tx repository.Tx, profileID string) ([]*model.SavedPaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SavedPaymentMethod
	for _, pm := range m.methods[profileID] {
		cp := *pm
		out = append(out, &cp)
	}
	return out, nil
}

// =============================
// Adapters
// =============================

type MockPaymentProvider struct {
	mu sync.Mutex

	GatewayName     string
	CreatedSessions int
	Retrieved       int
	Captured        int
	RefundsIssued   int

	CreateCheckoutSessionFunc func(ctx context.Context, items []adapter.LineItem, successURL, cancelURL string, metadata map[string]string) (*adapter.CheckoutSession, error)
	RetrieveSessionFunc       func(ctx context.Context, sessionID string) (*adapter.SessionStatus, error)
	CaptureSessionFunc        func(ctx context.Context, sessionID string) (*adapter.SessionStatus, error)
	CreateRefundFunc          func(ctx context.Context, gatewayTxnID string, amount int64, reason string) (string, error)
	VerifyWebhookFunc         func(ctx context.Context, payload []byte, headers http.Header) (*adapter.WebhookEvent, error)
}

var _ adapter.PaymentProvider = (*MockPaymentProvider)(nil)

func (m *MockPaymentProvider) Name() string {
	if m.GatewayName != "" {
		return m.GatewayName
	}
	return "stripe"
}

func (m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, items []adapter.LineItem, successURL, cancelURL string, metadata map[string]string) (*adapter.CheckoutSession, error) {
	m.mu.Lock()
	m.CreatedSessions++
	m.mu.Unlock()
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, items, successURL, cancelURL, metadata)
	}
	return &adapter.CheckoutSession{SessionID: "sess_test", RedirectURL: "https://pay.example.com/sess_test"}, nil
}

func (m *MockPaymentProvider) RetrieveSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	m.mu.Lock()
	m.Retrieved++
	m.mu.Unlock()
	if m.RetrieveSessionFunc != nil {
		return m.RetrieveSessionFunc(ctx, sessionID)
	}
	return &adapter.SessionStatus{Paid: false}, nil
}

func (m *MockPaymentProvider) CaptureSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	m.mu.Lock()
	m.Captured++
	m.mu.Unlock()
	if m.CaptureSessionFunc != nil {
		return m.CaptureSessionFunc(ctx, sessionID)
	}
	return &adapter.SessionStatus{Paid: false}, nil
}

func (m *MockPaymentProvider) CreateRefund(ctx context.Context, gatewayTxnID string, amount int64, reason string) (string, error) {
	m.mu.Lock()
	m.RefundsIssued++
	m.mu.Unlock()
	if m.CreateRefundFunc != nil {
		return m.CreateRefundFunc(ctx, gatewayTxnID, amount, reason)
	}
	return "re_test", nil
}

func (m *MockPaymentProvider) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*adapter.WebhookEvent, error) {
	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(ctx, payload, headers)
	}
	return &adapter.WebhookEvent{Type: "session.completed"}, nil
}

type MockMailer struct {
	mu   sync.Mutex
	Sent []adapter.MailMessage
	// SentCh receives one signal per delivered message; buffered so the
	// fire-and-forget goroutine never blocks.
	SentCh chan struct{}

	SendMailFunc func(ctx context.Context, msg adapter.MailMessage) error
}

var _ adapter.Mailer = (*MockMailer)(nil)

func NewMockMailer() *MockMailer {
	return &MockMailer{SentCh: make(chan struct{}, 16)}
}

func (m *MockMailer) SendMail(ctx context.Context, msg adapter.MailMessage) error {
	if m.SendMailFunc != nil {
		return m.SendMailFunc(ctx, msg)
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	select {
	case m.SentCh <- struct{}{}:
	default:
	}
	return nil
}

func (m *MockMailer) SentMessages() []adapter.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.MailMessage, len(m.Sent))
	copy(out, m.Sent)
	return out
}

type MockAssistant struct {
	AnswerFunc func(ctx context.Context, question string) (string, error)
}

var _ adapter.Assistant = (*MockAssistant)(nil)

func (m *MockAssistant) Answer(ctx context.Context, question string) (string, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question)
	}
	return "", nil
}
