package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alerting-platform/internal/config"
	"alerting-platform/internal/models"
)

func TestRegistrySelectsByChannel(t *testing.T) {
	var cfg config.Config
	r := NewRegistry(NewEmailSender(cfg), NewSMSSender(cfg))

	s, ok := r.For(models.ChannelEmail)
	require.True(t, ok)
	assert.Equal(t, models.ChannelEmail, s.Channel())

	_, ok = r.For(models.ChannelTelegram)
	assert.False(t, ok)

	assert.Len(t, r.Channels(), 2)
}

func TestEmailSenderUnconfigured(t *testing.T) {
	s := NewEmailSender(config.Config{})

	out := s.Send(context.Background(), models.User{ID: 1, Email: "a@x.io"}, Message{Title: "t"})
	assert.False(t, out.OK)
	assert.Equal(t, "a@x.io", out.Recipient)
	assert.ErrorIs(t, out.Err, models.ErrChannelUnconfigured)
}

func TestSMSSenderMissingPhone(t *testing.T) {
	var cfg config.Config
	cfg.SMS.AccountSID = "AC123"
	cfg.SMS.AuthToken = "tok"
	cfg.SMS.FromNumber = "+15550000"
	s := NewSMSSender(cfg)

	out := s.Send(context.Background(), models.User{ID: 7}, Message{Title: "t"})
	assert.False(t, out.OK)
	assert.ErrorIs(t, out.Err, models.ErrAddressMissing)
}

func TestSMSSenderUnconfigured(t *testing.T) {
	s := NewSMSSender(config.Config{})

	out := s.Send(context.Background(), models.User{ID: 7, Phone: "+15550001"}, Message{Title: "t"})
	assert.False(t, out.OK)
	assert.Equal(t, "+15550001", out.Recipient)
	assert.ErrorIs(t, out.Err, models.ErrChannelUnconfigured)
}

func TestTelegramSenderMissingChatID(t *testing.T) {
	var cfg config.Config
	cfg.Telegram.BotToken = "token"
	s := NewTelegramSender(cfg)

	out := s.Send(context.Background(), models.User{ID: 7}, Message{Title: "t"})
	assert.False(t, out.OK)
	assert.ErrorIs(t, out.Err, models.ErrAddressMissing)
}

type memInbox struct {
	messages []models.InAppMessage
	err      error
}

func (m *memInbox) AddMessage(_ context.Context, msg models.InAppMessage) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

type memPusher struct {
	pushed map[int64][][]byte
}

func (m *memPusher) Push(userID int64, payload []byte) {
	if m.pushed == nil {
		m.pushed = make(map[int64][][]byte)
	}
	m.pushed[userID] = append(m.pushed[userID], payload)
}

func TestInAppSenderRecordsAndPushes(t *testing.T) {
	inbox := &memInbox{}
	pusher := &memPusher{}
	s := NewInAppSender(inbox, pusher)

	out := s.Send(context.Background(), models.User{ID: 4}, Message{
		AlertID:  9,
		Title:    "disk filling up",
		Severity: models.SeverityWarning,
	})
	require.True(t, out.OK)
	assert.Equal(t, "4", out.Recipient)
	assert.NotEmpty(t, out.ProviderID)

	require.Len(t, inbox.messages, 1)
	assert.Equal(t, int64(9), inbox.messages[0].AlertID)
	assert.Equal(t, out.ProviderID, inbox.messages[0].ID)
	assert.Len(t, pusher.pushed[4], 1)
}

func TestInAppSenderInboxFailure(t *testing.T) {
	inbox := &memInbox{err: errors.New("connection refused")}
	s := NewInAppSender(inbox, nil)

	out := s.Send(context.Background(), models.User{ID: 4}, Message{AlertID: 9})
	assert.False(t, out.OK)
	assert.ErrorIs(t, out.Err, models.ErrTransportFailure)
}

func TestCallBoundedHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := callBounded(ctx, func() (string, error) {
		time.Sleep(time.Second)
		return "late", nil
	})
	assert.ErrorIs(t, err, models.ErrTransportFailure)
}
