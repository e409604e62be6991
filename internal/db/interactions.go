package db

import (
	"context"
	"fmt"
	"time"

	"alerting-platform/internal/models"
)

const interactionColumns = `
        alert_id, user_id, is_read, read_at, is_snoozed, snoozed_until,
        last_reminded_at, created_at, updated_at`

// Ensure upserts the (alert, user) interaction row; first touch creates it
// with default state.
func (d *DB) Ensure(ctx context.Context, alertID, userID int64) (*models.RecipientInteraction, error) {
	query := `
        INSERT INTO recipient_interactions (alert_id, user_id, is_read, is_snoozed, created_at, updated_at)
        VALUES ($1, $2, false, false, now(), now())
        ON CONFLICT (alert_id, user_id) DO UPDATE SET updated_at = now()
        RETURNING` + interactionColumns
	var ri models.RecipientInteraction
	err := d.Pool.QueryRow(ctx, query, alertID, userID).Scan(
		&ri.AlertID, &ri.UserID, &ri.IsRead, &ri.ReadAt, &ri.IsSnoozed, &ri.SnoozedUntil,
		&ri.LastRemindedAt, &ri.CreatedAt, &ri.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure interaction (alert %d, user %d): %w", alertID, userID, err)
	}
	return &ri, nil
}

func (d *DB) MarkRead(ctx context.Context, alertID, userID int64, at time.Time) error {
	query := `
        UPDATE recipient_interactions
        SET is_read = true, read_at = COALESCE(read_at, $3), updated_at = now()
        WHERE alert_id = $1 AND user_id = $2`
	return d.execInteraction(ctx, query, alertID, userID, at)
}

func (d *DB) Snooze(ctx context.Context, alertID, userID int64, until time.Time) error {
	query := `
        UPDATE recipient_interactions
        SET is_snoozed = true, snoozed_until = $3, updated_at = now()
        WHERE alert_id = $1 AND user_id = $2`
	return d.execInteraction(ctx, query, alertID, userID, until)
}

func (d *DB) Unsnooze(ctx context.Context, alertID, userID int64) error {
	query := `
        UPDATE recipient_interactions
        SET is_snoozed = false, snoozed_until = NULL, updated_at = now()
        WHERE alert_id = $1 AND user_id = $2`
	return d.execInteraction(ctx, query, alertID, userID)
}

func (d *DB) SetLastReminded(ctx context.Context, alertID, userID int64, at time.Time) error {
	query := `
        UPDATE recipient_interactions
        SET last_reminded_at = $3, updated_at = now()
        WHERE alert_id = $1 AND user_id = $2`
	return d.execInteraction(ctx, query, alertID, userID, at)
}

// ResetExpiredSnoozes is one idempotent bulk update over all interactions.
func (d *DB) ResetExpiredSnoozes(ctx context.Context, now time.Time) (int64, error) {
	query := `
        UPDATE recipient_interactions
        SET is_snoozed = false, snoozed_until = NULL, updated_at = now()
        WHERE is_snoozed = true AND snoozed_until <= $1`
	tag, err := d.Pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to reset expired snoozes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (d *DB) execInteraction(ctx context.Context, query string, alertID, userID int64, args ...any) error {
	all := append([]any{alertID, userID}, args...)
	tag, err := d.Pool.Exec(ctx, query, all...)
	if err != nil {
		return fmt.Errorf("failed to update interaction (alert %d, user %d): %w", alertID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no interaction row for alert %d user %d", alertID, userID)
	}
	return nil
}
