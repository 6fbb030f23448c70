package adapter

import "context"

const (
	MailTemplateWelcomeCredentials   = "welcome_credentials"
	MailTemplatePurchaseConfirmation = "purchase_confirmation"
)

// MailMessage is a templated outbound email.
type MailMessage struct {
	To       string
	Subject  string
	Template string
	Context  map[string]string
}

// Mailer is fire-and-forget: failures are logged by the caller, never
// propagated into the payment flow.
type Mailer interface {
	SendMail(ctx context.Context, msg MailMessage) error
}
