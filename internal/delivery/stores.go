package delivery

import (
	"context"
	"time"

	"alerting-platform/internal/models"
)

// Store contracts with the external CRUD layer and the core's own
// persistence. internal/db implements them with pgx; tests use in-memory
// fakes. Audience reads always hit the store so membership changes are
// picked up at send time, never cached here.

type AlertStore interface {
	// GetAlert returns models.ErrNotFound for an unknown id.
	GetAlert(ctx context.Context, id int64) (*models.Alert, error)
	// ListReminderAlerts returns non-archived active alerts with reminders
	// enabled. Time-window filtering happens at the caller against now.
	ListReminderAlerts(ctx context.Context) ([]models.Alert, error)
}

type UserDirectory interface {
	ActiveUsers(ctx context.Context) ([]models.User, error)
	ActiveUsersByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	ActiveTeamMembers(ctx context.Context, teamIDs []int64) ([]models.User, error)
}

// DeliveryStore keys records by (alert_id, user_id); a retry mutates the
// existing row. A record that reached "sent" never transitions back.
type DeliveryStore interface {
	EnsureRecord(ctx context.Context, alertID, userID int64, channel models.Channel) (*models.DeliveryRecord, error)
	RecordSuccess(ctx context.Context, alertID, userID int64, recipient, providerID string, at time.Time) error
	RecordFailure(ctx context.Context, alertID, userID int64, recipient, errMsg string, at time.Time) error
	// ListByAlert orders by most recent attempt first.
	ListByAlert(ctx context.Context, alertID int64) ([]models.DeliveryRecord, error)
	ListFailed(ctx context.Context, alertID int64) ([]models.DeliveryRecord, error)
}

// InteractionStore upserts by (alert_id, user_id); the core never assumes
// the row pre-exists.
type InteractionStore interface {
	Ensure(ctx context.Context, alertID, userID int64) (*models.RecipientInteraction, error)
	MarkRead(ctx context.Context, alertID, userID int64, at time.Time) error
	Snooze(ctx context.Context, alertID, userID int64, until time.Time) error
	Unsnooze(ctx context.Context, alertID, userID int64) error
	SetLastReminded(ctx context.Context, alertID, userID int64, at time.Time) error
	ResetExpiredSnoozes(ctx context.Context, now time.Time) (int64, error)
}
