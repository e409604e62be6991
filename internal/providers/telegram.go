package providers

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"alerting-platform/internal/config"
	"alerting-platform/internal/models"
)

// TelegramSender sends alerts through a bot shared by the whole process,
// throttled by a global rate limiter to stay under the Bot API ceiling.
type TelegramSender struct {
	cfg     config.Config
	limiter *rate.Limiter

	once    sync.Once
	bot     *bot.Bot
	initErr error
}

func NewTelegramSender(cfg config.Config) *TelegramSender {
	rps := cfg.Telegram.RatePerSecond
	if rps <= 0 {
		rps = 25
	}
	return &TelegramSender{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(float64(rps)), rps),
	}
}

func (s *TelegramSender) Channel() models.Channel {
	return models.ChannelTelegram
}

func (s *TelegramSender) client() (*bot.Bot, error) {
	s.once.Do(func() {
		s.bot, s.initErr = bot.New(s.cfg.Telegram.BotToken)
	})
	return s.bot, s.initErr
}

func (s *TelegramSender) Send(ctx context.Context, user models.User, msg Message) Outcome {
	if user.TelegramChatID == 0 {
		return Outcome{Err: fmt.Errorf("%w: user %d has no telegram chat id", models.ErrAddressMissing, user.ID)}
	}
	recipient := strconv.FormatInt(user.TelegramChatID, 10)

	if s.cfg.Telegram.BotToken == "" {
		return Outcome{Recipient: recipient, Err: models.ErrChannelUnconfigured}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return Outcome{Recipient: recipient, Err: fmt.Errorf("%w: rate limit wait: %v", models.ErrTransportFailure, err)}
	}

	b, err := s.client()
	if err != nil {
		return Outcome{Recipient: recipient, Err: wrapTransport(err)}
	}

	title := msg.Title
	if msg.Reminder {
		title = "REMINDER: " + title
	}
	text := fmt.Sprintf("*%s*\n%s\n\nSeverity: %s", title, msg.Body, msg.Severity)

	sent, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    user.TelegramChatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return Outcome{Recipient: recipient, Err: wrapTransport(err)}
	}

	return Outcome{OK: true, Recipient: recipient, ProviderID: strconv.Itoa(sent.ID)}
}
