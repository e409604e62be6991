package providers

import (
	"context"
	"fmt"
	"time"

	"alerting-platform/internal/config"
	"alerting-platform/internal/models"
	"alerting-platform/pkg/email"
)

// EmailSender sends alerts over SMTP. Every registered user has an email
// address, so this channel never fails with an address error.
type EmailSender struct {
	cfg config.Config
}

func NewEmailSender(cfg config.Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Channel() models.Channel {
	return models.ChannelEmail
}

func (s *EmailSender) configured() bool {
	e := s.cfg.Email
	return e.SMTPServer != "" && e.SMTPPort != 0 && e.From != ""
}

func (s *EmailSender) Send(ctx context.Context, user models.User, msg Message) Outcome {
	recipient := user.Email
	if !s.configured() {
		return Outcome{Recipient: recipient, Err: models.ErrChannelUnconfigured}
	}

	subject := fmt.Sprintf("Alert: %s", msg.Title)
	if msg.Reminder {
		subject = fmt.Sprintf("REMINDER: %s", msg.Title)
	}
	body := fmt.Sprintf("%s\n\nSeverity: %s\n\nThis is an automated alert from the alerting platform.", msg.Body, msg.Severity)

	_, err := callBounded(ctx, func() (string, error) {
		return "", email.Send(s.cfg.Email.SMTPServer, s.cfg.Email.SMTPPort,
			s.cfg.Email.Username, s.cfg.Email.Password, s.cfg.Email.From,
			recipient, subject, body)
	})
	if err != nil {
		return Outcome{Recipient: recipient, Err: wrapTransport(err)}
	}

	return Outcome{
		OK:         true,
		Recipient:  recipient,
		ProviderID: fmt.Sprintf("email_%d", time.Now().UnixNano()),
	}
}
