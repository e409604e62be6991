package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"alerting-platform/internal/models"
)

// InboxStore persists in-app messages for later retrieval.
type InboxStore interface {
	AddMessage(ctx context.Context, msg models.InAppMessage) error
}

// Pusher delivers a best-effort realtime payload to a connected user.
// Failures are ignored: in-app delivery means "recorded", not "seen".
type Pusher interface {
	Push(userID int64, payload []byte)
}

// InAppSender records the alert in the recipient's inbox and pushes it over
// any open websocket connections. It needs no external transport.
type InAppSender struct {
	inbox  InboxStore
	pusher Pusher
}

func NewInAppSender(inbox InboxStore, pusher Pusher) *InAppSender {
	return &InAppSender{inbox: inbox, pusher: pusher}
}

func (s *InAppSender) Channel() models.Channel {
	return models.ChannelInApp
}

func (s *InAppSender) Send(ctx context.Context, user models.User, msg Message) Outcome {
	recipient := strconv.FormatInt(user.ID, 10)

	record := models.InAppMessage{
		ID:        uuid.NewString(),
		AlertID:   msg.AlertID,
		UserID:    user.ID,
		Title:     msg.Title,
		Body:      msg.Body,
		Severity:  msg.Severity,
		Reminder:  msg.Reminder,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.inbox.AddMessage(ctx, record); err != nil {
		return Outcome{Recipient: recipient, Err: fmt.Errorf("%w: inbox write: %v", models.ErrTransportFailure, err)}
	}

	if s.pusher != nil {
		if payload, err := json.Marshal(record); err == nil {
			s.pusher.Push(user.ID, payload)
		}
	}

	return Outcome{OK: true, Recipient: recipient, ProviderID: record.ID}
}
