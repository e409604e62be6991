package providers

import (
	"context"
	"fmt"

	"alerting-platform/internal/config"
	"alerting-platform/internal/models"
	"alerting-platform/pkg/sms"
)

// SMSSender sends alerts via Twilio. A recipient without a phone number
// fails immediately with an address error before any transport is touched.
type SMSSender struct {
	cfg config.Config
}

func NewSMSSender(cfg config.Config) *SMSSender {
	return &SMSSender{cfg: cfg}
}

func (s *SMSSender) Channel() models.Channel {
	return models.ChannelSMS
}

func (s *SMSSender) configured() bool {
	c := s.cfg.SMS
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

func (s *SMSSender) Send(ctx context.Context, user models.User, msg Message) Outcome {
	if user.Phone == "" {
		return Outcome{Err: fmt.Errorf("%w: user %d has no phone number", models.ErrAddressMissing, user.ID)}
	}
	recipient := user.Phone

	if !s.configured() {
		return Outcome{Recipient: recipient, Err: models.ErrChannelUnconfigured}
	}

	text := fmt.Sprintf("[%s] %s", msg.Severity, msg.Title)
	if msg.Reminder {
		text = fmt.Sprintf("[%s] REMINDER: %s", msg.Severity, msg.Title)
	}
	// Keep SMS short; append the body only while it fits.
	if len(text)+len(msg.Body) < 140 {
		text = fmt.Sprintf("%s: %s", text, msg.Body)
	}

	sid, err := callBounded(ctx, func() (string, error) {
		return sms.Send(s.cfg.SMS.AccountSID, s.cfg.SMS.AuthToken, s.cfg.SMS.FromNumber, recipient, text)
	})
	if err != nil {
		return Outcome{Recipient: recipient, Err: wrapTransport(err)}
	}

	return Outcome{OK: true, Recipient: recipient, ProviderID: sid}
}
