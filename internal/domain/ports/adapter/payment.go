package adapter

import (
	"context"
	"net/http"
)

// LineItem is one provider-facing charge line.
type LineItem struct {
	Name     string
	Amount   int64 // cents
	Quantity int64
}

// CheckoutSession is the provider-hosted payment flow handle returned from
// session creation. SessionID becomes the order's PaymentIntentID.
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// SessionStatus is the provider's view of a checkout session on retrieval.
type SessionStatus struct {
	Paid         bool
	AmountTotal  int64
	GatewayTxnID string // charge/capture id when paid
	Metadata     map[string]string
}

// WebhookEvent is a provider callback after signature verification.
type WebhookEvent struct {
	Type            string // session.completed | payment.failed
	PaymentIntentID string
	GatewayTxnID    string
	AmountTotal     int64
	FailReason      string
	Metadata        map[string]string
}

// PaymentProvider is the hex port for payment gateways. All calls are
// blocking fail-fast I/O; errors surface to the caller untranslated.
type PaymentProvider interface {
	Name() string

	CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)

	// CaptureSession finalizes an approved session for providers with an
	// explicit capture step (PayPal). Stripe implements it as a no-op retrieve.
	CaptureSession(ctx context.Context, sessionID string) (*SessionStatus, error)

	// CreateRefund refunds against the gateway transaction id; it must be
	// called before any local state mutation so a provider failure leaves the
	// order completed and retryable.
	CreateRefund(ctx context.Context, gatewayTxnID string, amount int64, reason string) (refundID string, err error)

	// VerifyWebhook authenticates the raw payload against the delivery
	// headers and decodes the event. Stripe signs with a single header;
	// PayPal needs the whole transmission header set and a round trip to its
	// verification endpoint, hence the context. Providers retry delivery on
	// non-2xx responses.
	VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*WebhookEvent, error)
}
