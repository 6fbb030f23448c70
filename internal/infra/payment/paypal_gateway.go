package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"course-marketplace/internal/domain/ports/adapter"
)

var _ adapter.PaymentProvider = (*PayPalGateway)(nil)

// PayPalGateway implements the provider port with direct HTTP calls against
// the Orders v2 API. Unlike Stripe, an approved PayPal order still needs an
// explicit capture before money moves.
type PayPalGateway struct {
	clientID  string
	secret    string
	webhookID string
	currency  string
	baseURL   string
	client    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalGateway(clientID, secret, webhookID, currency string, sandbox bool) *PayPalGateway {
	baseURL := "https://api-m.paypal.com"
	if sandbox {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	return &PayPalGateway{
		clientID:  clientID,
		secret:    secret,
		webhookID: webhookID,
		currency:  strings.ToUpper(currency),
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *PayPalGateway) Name() string { return "paypal" }

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount paypalAmount `json:"amount"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id,omitempty"`
	CustomID    string       `json:"custom_id,omitempty"`
	Description string       `json:"description,omitempty"`
	Amount      paypalAmount `json:"amount"`
	Payments    *struct {
		Captures []paypalCapture `json:"captures"`
	} `json:"payments,omitempty"`
}

type paypalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paypalOrder struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
	Links         []paypalLink         `json:"links"`
}

func (g *PayPalGateway) CreateCheckoutSession(ctx context.Context, items []adapter.LineItem, successURL, cancelURL string, metadata map[string]string) (*adapter.CheckoutSession, error) {
	var total int64
	var names []string
	for _, it := range items {
		total += it.Amount * it.Quantity
		names = append(names, it.Name)
	}
	description := strings.Join(names, ", ")
	if len(description) > 127 {
		description = description[:124] + "..."
	}

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": metadata["order_number"],
			"custom_id":    metadata["order_id"],
			"description":  description,
			"amount": paypalAmount{
				CurrencyCode: g.currency,
				Value:        centsToValue(total),
			},
		}},
		"application_context": map[string]string{
			"return_url":  successURL,
			"cancel_url":  cancelURL,
			"user_action": "PAY_NOW",
		},
	}

	var ord paypalOrder
	if err := g.call(ctx, http.MethodPost, "/v2/checkout/orders", body, &ord); err != nil {
		return nil, err
	}

	var approveURL string
	for _, l := range ord.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			approveURL = l.Href
			break
		}
	}
	if ord.ID == "" || approveURL == "" {
		return nil, fmt.Errorf("paypal create order: missing id or approve link")
	}
	return &adapter.CheckoutSession{SessionID: ord.ID, RedirectURL: approveURL}, nil
}

func (g *PayPalGateway) RetrieveSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	var ord paypalOrder
	if err := g.call(ctx, http.MethodGet, "/v2/checkout/orders/"+sessionID, nil, &ord); err != nil {
		return nil, err
	}
	return g.orderStatus(&ord), nil
}

// CaptureSession finalizes an approved order. An order the payer has not
// approved yet captures as unpaid rather than erroring, so polling callers
// keep waiting instead of failing.
func (g *PayPalGateway) CaptureSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	var ord paypalOrder
	err := g.call(ctx, http.MethodPost, "/v2/checkout/orders/"+sessionID+"/capture", map[string]interface{}{}, &ord)
	if err != nil {
		if strings.Contains(err.Error(), "ORDER_NOT_APPROVED") {
			return &adapter.SessionStatus{Paid: false}, nil
		}
		if strings.Contains(err.Error(), "ORDER_ALREADY_CAPTURED") {
			return g.RetrieveSession(ctx, sessionID)
		}
		return nil, err
	}
	return g.orderStatus(&ord), nil
}

func (g *PayPalGateway) CreateRefund(ctx context.Context, gatewayTxnID string, amount int64, reason string) (string, error) {
	body := map[string]interface{}{
		"amount": paypalAmount{CurrencyCode: g.currency, Value: centsToValue(amount)},
	}
	if reason != "" {
		if len(reason) > 255 {
			reason = reason[:255]
		}
		body["note_to_payer"] = reason
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := g.call(ctx, http.MethodPost, "/v2/payments/captures/"+gatewayTxnID+"/refund", body, &out); err != nil {
		return "", err
	}
	if out.Status == "CANCELLED" || out.Status == "FAILED" {
		return "", fmt.Errorf("paypal refund %s: status %s", out.ID, out.Status)
	}
	return out.ID, nil
}

// VerifyWebhook authenticates a delivery with PayPal's verification endpoint
// before decoding it. A forged payload must never reach the payment flow, so
// any missing transmission header or a non-SUCCESS verdict rejects the event.
func (g *PayPalGateway) VerifyWebhook(ctx context.Context, payload []byte, headers http.Header) (*adapter.WebhookEvent, error) {
	if err := g.verifyTransmission(ctx, payload, headers); err != nil {
		return nil, err
	}

	var delivery struct {
		ID        string          `json:"id"`
		EventType string          `json:"event_type"`
		Resource  json.RawMessage `json:"resource"`
	}
	if err := json.Unmarshal(payload, &delivery); err != nil {
		return nil, fmt.Errorf("paypal webhook payload: %w", err)
	}

	switch delivery.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		var res struct {
			ID                string       `json:"id"`
			CustomID          string       `json:"custom_id"`
			Amount            paypalAmount `json:"amount"`
			SupplementaryData struct {
				RelatedIDs struct {
					OrderID string `json:"order_id"`
				} `json:"related_ids"`
			} `json:"supplementary_data"`
		}
		if err := json.Unmarshal(delivery.Resource, &res); err != nil {
			return nil, fmt.Errorf("paypal webhook resource: %w", err)
		}
		return &adapter.WebhookEvent{
			Type:            "session.completed",
			PaymentIntentID: res.SupplementaryData.RelatedIDs.OrderID,
			GatewayTxnID:    res.ID,
			AmountTotal:     valueToCents(res.Amount.Value),
			Metadata:        map[string]string{"order_id": res.CustomID},
		}, nil

	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		var res struct {
			ID                string `json:"id"`
			CustomID          string `json:"custom_id"`
			SupplementaryData struct {
				RelatedIDs struct {
					OrderID string `json:"order_id"`
				} `json:"related_ids"`
			} `json:"supplementary_data"`
		}
		if err := json.Unmarshal(delivery.Resource, &res); err != nil {
			return nil, fmt.Errorf("paypal webhook resource: %w", err)
		}
		return &adapter.WebhookEvent{
			Type:            "payment.failed",
			PaymentIntentID: res.SupplementaryData.RelatedIDs.OrderID,
			GatewayTxnID:    res.ID,
			FailReason:      delivery.EventType,
			Metadata:        map[string]string{"order_id": res.CustomID},
		}, nil

	default:
		// Approval without capture is not completion; the verify endpoints or
		// the reconciler perform the capture.
		return &adapter.WebhookEvent{Type: delivery.EventType}, nil
	}
}

// paypalTransmissionHeaders is the header set PayPal signs each delivery with.
var paypalTransmissionHeaders = []string{
	"Paypal-Transmission-Id",
	"Paypal-Transmission-Time",
	"Paypal-Transmission-Sig",
	"Paypal-Cert-Url",
	"Paypal-Auth-Algo",
}

// verifyTransmission posts the delivery headers, the configured webhook id and
// the raw body to /v1/notifications/verify-webhook-signature and requires a
// SUCCESS verdict.
func (g *PayPalGateway) verifyTransmission(ctx context.Context, payload []byte, headers http.Header) error {
	for _, h := range paypalTransmissionHeaders {
		if headers.Get(h) == "" {
			return fmt.Errorf("paypal webhook: missing %s header", h)
		}
	}
	if g.webhookID == "" {
		return fmt.Errorf("paypal webhook: no webhook id configured")
	}

	body := map[string]interface{}{
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"webhook_id":        g.webhookID,
		"webhook_event":     json.RawMessage(payload),
	}
	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := g.call(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", body, &out); err != nil {
		return err
	}
	if out.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("paypal webhook: verification status %q", out.VerificationStatus)
	}
	return nil
}

func (g *PayPalGateway) orderStatus(ord *paypalOrder) *adapter.SessionStatus {
	st := &adapter.SessionStatus{Metadata: map[string]string{}}
	if len(ord.PurchaseUnits) > 0 {
		pu := ord.PurchaseUnits[0]
		if pu.CustomID != "" {
			st.Metadata["order_id"] = pu.CustomID
		}
		if pu.ReferenceID != "" {
			st.Metadata["order_number"] = pu.ReferenceID
		}
		st.AmountTotal = valueToCents(pu.Amount.Value)
		if pu.Payments != nil {
			for _, c := range pu.Payments.Captures {
				if c.Status == "COMPLETED" || c.Status == "PENDING" {
					st.GatewayTxnID = c.ID
					st.AmountTotal = valueToCents(c.Amount.Value)
					break
				}
			}
		}
	}
	st.Paid = ord.Status == "COMPLETED" && st.GatewayTxnID != ""
	return st
}

// call performs an authenticated JSON request and decodes the response into
// out. Non-2xx responses surface the raw body in the error.
func (g *PayPalGateway) call(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("paypal marshal request: %w", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("paypal %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("paypal read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal %s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("paypal unmarshal response: %w, body: %s", err, string(raw))
		}
	}
	return nil
}

// token returns a cached client-credentials access token, refreshing it one
// minute before expiry.
func (g *PayPalGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.tokenExpiry) {
		return g.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	req.SetBasicAuth(g.clientID, g.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("paypal token read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token: status %d: %s", resp.StatusCode, string(raw))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("paypal token unmarshal: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("paypal token: empty access token")
	}

	g.accessToken = tok.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return g.accessToken, nil
}

func centsToValue(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func valueToCents(value string) int64 {
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 100))
}
