package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"github.com/rs/zerolog"

	"course-marketplace/internal/config"
	"course-marketplace/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer sends templated plain-text mail. Callers treat delivery as
// fire-and-forget; an error here is logged upstream, never propagated into
// the payment flow.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	log    *zerolog.Logger
}

func NewSMTPMailer(cfg *config.MailConfig, log *zerolog.Logger) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	l := log.With().Str("component", "smtp_mailer").Logger()
	return &SMTPMailer{client: client, from: cfg.From, log: &l}, nil
}

func (m *SMTPMailer) SendMail(ctx context.Context, msg adapter.MailMessage) error {
	body, err := renderTemplate(msg.Template, msg.Context)
	if err != nil {
		return err
	}

	mm := gomail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	m.log.Debug().Str("to", msg.To).Str("template", msg.Template).Msg("mail sent")
	return nil
}

func renderTemplate(template string, c map[string]string) (string, error) {
	switch template {
	case adapter.MailTemplateWelcomeCredentials:
		return fmt.Sprintf(
			"Hi %s,\n\nYour order %s is confirmed and an account was created for you.\n\n"+
				"Login: %s\nTemporary password: %s\n\n"+
				"Please change your password after signing in.\n",
			c["name"], c["order_number"], c["email"], c["password"]), nil
	case adapter.MailTemplatePurchaseConfirmation:
		return fmt.Sprintf(
			"Hi %s,\n\nThanks for your purchase! Order %s (total %s) is confirmed "+
				"and your courses are ready in your dashboard.\n",
			c["name"], c["order_number"], c["total"]), nil
	default:
		return "", fmt.Errorf("unknown mail template %q", template)
	}
}
