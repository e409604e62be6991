package providers

import (
	"context"
	"errors"
	"fmt"

	"alerting-platform/internal/models"
)

// Message is the channel-independent content of one delivery.
type Message struct {
	AlertID  int64
	Title    string
	Body     string
	Severity models.Severity
	Reminder bool
}

// Outcome is opaque to the Delivery Engine beyond these fields; it never
// interprets transport-specific error codes.
type Outcome struct {
	OK         bool
	Recipient  string
	ProviderID string
	Err        error
}

// Sender attempts one transmission to one recipient. Implementations pick
// the address matching their channel from the user and fail with
// models.ErrAddressMissing when it is absent.
type Sender interface {
	Channel() models.Channel
	Send(ctx context.Context, user models.User, msg Message) Outcome
}

// Registry selects a Sender by the alert's channel value.
type Registry struct {
	senders map[models.Channel]Sender
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[models.Channel]Sender)}
	for _, s := range senders {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s Sender) {
	r.senders[s.Channel()] = s
}

func (r *Registry) For(ch models.Channel) (Sender, bool) {
	s, ok := r.senders[ch]
	return s, ok
}

func (r *Registry) Channels() []models.Channel {
	out := make([]models.Channel, 0, len(r.senders))
	for ch := range r.senders {
		out = append(out, ch)
	}
	return out
}

// callBounded runs fn and abandons the call once ctx expires. net/smtp and
// the Twilio client take no context, so the goroutine may outlive the call;
// the attempt itself is still recorded as failed rather than left pending.
func callBounded(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		id, err := fn()
		done <- result{id: id, err: err}
	}()
	select {
	case r := <-done:
		return r.id, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", models.ErrTransportFailure, ctx.Err())
	}
}

func wrapTransport(err error) error {
	if errors.Is(err, models.ErrTransportFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrTransportFailure, err)
}
