package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/refund"
	"github.com/stripe/stripe-go/v78/webhook"

	"course-marketplace/internal/domain/ports/adapter"
)

var _ adapter.PaymentProvider = (*StripeGateway)(nil)

// StripeGateway drives Stripe Checkout hosted sessions. The session id is the
// order's payment intent id; the charge is referenced by the underlying
// PaymentIntent once paid.
type StripeGateway struct {
	webhookSecret string
	currency      string
}

func NewStripeGateway(secretKey, webhookSecret, currency string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret, currency: currency}
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, items []adapter.LineItem, successURL, cancelURL string, metadata map[string]string) (*adapter.CheckoutSession, error) {
	var lineItems []*stripe.CheckoutSessionLineItemParams
	for _, it := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(it.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata:   metadata,
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}
	return &adapter.CheckoutSession{SessionID: s.ID, RedirectURL: s.URL}, nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get session: %w", err)
	}
	return sessionStatusOf(s), nil
}

// CaptureSession is a plain retrieve: hosted Checkout captures on payment,
// there is no separate approval step.
func (g *StripeGateway) CaptureSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	return g.RetrieveSession(ctx, sessionID)
}

func (g *StripeGateway) CreateRefund(ctx context.Context, gatewayTxnID string, amount int64, reason string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(gatewayTxnID),
	}
	params.Context = ctx
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe refund: %w", err)
	}
	return r.ID, nil
}

func (g *StripeGateway) VerifyWebhook(_ context.Context, payload []byte, headers http.Header) (*adapter.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, headers.Get("Stripe-Signature"), g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("stripe webhook verify: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("stripe webhook payload: %w", err)
		}
		ev := &adapter.WebhookEvent{
			PaymentIntentID: s.ID,
			AmountTotal:     s.AmountTotal,
			Metadata:        s.Metadata,
		}
		if s.PaymentIntent != nil {
			ev.GatewayTxnID = s.PaymentIntent.ID
		}
		if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			ev.Type = "session.completed"
		} else {
			// Delayed payment methods complete asynchronously; wait for the
			// follow-up event instead of completing an unpaid session.
			ev.Type = "session.pending"
		}
		return ev, nil

	case "checkout.session.async_payment_failed", "checkout.session.expired":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("stripe webhook payload: %w", err)
		}
		return &adapter.WebhookEvent{
			Type:            "payment.failed",
			PaymentIntentID: s.ID,
			FailReason:      string(event.Type),
			Metadata:        s.Metadata,
		}, nil

	default:
		return &adapter.WebhookEvent{Type: string(event.Type)}, nil
	}
}

func sessionStatusOf(s *stripe.CheckoutSession) *adapter.SessionStatus {
	st := &adapter.SessionStatus{
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: s.AmountTotal,
		Metadata:    s.Metadata,
	}
	if s.PaymentIntent != nil {
		st.GatewayTxnID = s.PaymentIntent.ID
	}
	if st.Paid && st.GatewayTxnID == "" {
		st.GatewayTxnID = s.ID
	}
	return st
}
