// File: internal/usecase/support_uc.go
package usecase

import (
	"context"
	"strings"

	"course-marketplace/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ SupportUseCase = (*supportUC)(nil)

type SupportUseCase interface {
	// Ask answers a support question. Scripted rules are evaluated in order,
	// first match wins; the LLM fallback only runs when no rule matches, and
	// its failure degrades to the default scripted reply, never an error.
	Ask(ctx context.Context, question string) (SupportAnswer, error)
}

type SupportAnswer struct {
	Reply  string
	Intent string // matched rule name, "fallback", or "default"
}

// IntentRule pairs a keyword matcher with a scripted reply.
type IntentRule struct {
	Name     string
	Keywords []string // any keyword matching (case-insensitive) triggers the rule
	Reply    string
}

// DefaultIntentRules covers the common marketplace questions. Order matters:
// more specific rules go first.
func DefaultIntentRules() []IntentRule {
	return []IntentRule{
		{
			Name:     "refund",
			Keywords: []string{"refund", "money back", "cancel my order"},
			Reply:    "Completed orders can be refunded within 30 days of payment. Open your order history and choose \"Request refund\", or reply with your order number.",
		},
		{
			Name:     "coupon",
			Keywords: []string{"coupon", "discount", "promo code", "voucher"},
			Reply:    "Enter your coupon code on the checkout page before paying. Coupons apply before tax and may carry a minimum purchase amount or an expiry date.",
		},
		{
			Name:     "payment",
			Keywords: []string{"payment", "pay", "card", "stripe", "paypal", "checkout"},
			Reply:    "We accept card payments through Stripe and PayPal. If a payment looks stuck, your order completes automatically once the provider confirms it; this can take a few minutes.",
		},
		{
			Name:     "access",
			Keywords: []string{"access", "enroll", "can't open", "cannot open", "course not showing"},
			Reply:    "Purchased courses appear under \"My courses\" as soon as payment is confirmed. Guest purchases: log in with the credentials from your welcome email.",
		},
		{
			Name:     "invoice",
			Keywords: []string{"invoice", "receipt", "billing"},
			Reply:    "An invoice is generated for every completed order. You can download it from the order detail page.",
		},
	}
}

const defaultReply = "Thanks for reaching out! A member of our support team will get back to you shortly. For order issues, please include your order number."

type supportUC struct {
	rules     []IntentRule
	assistant adapter.Assistant // nil disables the LLM fallback
	log       *zerolog.Logger
}

func NewSupportUseCase(rules []IntentRule, assistant adapter.Assistant, logger *zerolog.Logger) *supportUC {
	if len(rules) == 0 {
		rules = DefaultIntentRules()
	}
	return &supportUC{rules: rules, assistant: assistant, log: logger}
}

func (u *supportUC) Ask(ctx context.Context, question string) (SupportAnswer, error) {
	q := strings.ToLower(question)

	for _, rule := range u.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(q, kw) {
				return SupportAnswer{Reply: rule.Reply, Intent: rule.Name}, nil
			}
		}
	}

	if u.assistant != nil {
		reply, err := u.assistant.Answer(ctx, question)
		if err == nil && reply != "" {
			return SupportAnswer{Reply: reply, Intent: "fallback"}, nil
		}
		if err != nil {
			u.log.Warn().Err(err).Msg("assistant fallback failed, using default reply")
		}
	}

	return SupportAnswer{Reply: defaultReply, Intent: "default"}, nil
}
