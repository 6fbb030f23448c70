package mail

import (
	"context"

	"github.com/rs/zerolog"

	"course-marketplace/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer logs instead of sending. Used when SMTP is not configured.
type NoopMailer struct {
	log *zerolog.Logger
}

func NewNoopMailer(log *zerolog.Logger) *NoopMailer {
	l := log.With().Str("component", "noop_mailer").Logger()
	return &NoopMailer{log: &l}
}

func (m *NoopMailer) SendMail(_ context.Context, msg adapter.MailMessage) error {
	m.log.Info().Str("to", msg.To).Str("template", msg.Template).Msg("mail suppressed (no smtp configured)")
	return nil
}
