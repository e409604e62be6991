package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"alerting-platform/internal/models"
)

const deliveryColumns = `
        id, alert_id, user_id, channel, recipient, status,
        COALESCE(provider_message_id, ''), COALESCE(error_message, ''),
        attempt_count, last_attempt_at, delivered_at, created_at, updated_at`

func scanDelivery(row pgx.Row) (*models.DeliveryRecord, error) {
	var r models.DeliveryRecord
	err := row.Scan(
		&r.ID, &r.AlertID, &r.UserID, &r.Channel, &r.Recipient, &r.Status,
		&r.ProviderMessageID, &r.ErrorMessage,
		&r.AttemptCount, &r.LastAttemptAt, &r.DeliveredAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// EnsureRecord upserts the (alert, user) record in pending state. An
// existing record is returned untouched so a retry keeps its attempt count.
func (d *DB) EnsureRecord(ctx context.Context, alertID, userID int64, channel models.Channel) (*models.DeliveryRecord, error) {
	query := `
        INSERT INTO delivery_records (alert_id, user_id, channel, recipient, status, attempt_count, created_at, updated_at)
        VALUES ($1, $2, $3, '', 'pending', 0, now(), now())
        ON CONFLICT (alert_id, user_id) DO UPDATE SET updated_at = now()
        RETURNING` + deliveryColumns
	rec, err := scanDelivery(d.Pool.QueryRow(ctx, query, alertID, userID, channel))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure delivery record (alert %d, user %d): %w", alertID, userID, err)
	}
	return rec, nil
}

// RecordSuccess marks the attempt sent. delivered_at is only written on the
// first transition into sent.
func (d *DB) RecordSuccess(ctx context.Context, alertID, userID int64, recipient, providerID string, at time.Time) error {
	query := `
        UPDATE delivery_records
        SET status = 'sent',
            recipient = $3,
            provider_message_id = $4,
            error_message = NULL,
            attempt_count = attempt_count + 1,
            last_attempt_at = $5,
            delivered_at = COALESCE(delivered_at, $5),
            updated_at = now()
        WHERE alert_id = $1 AND user_id = $2`
	tag, err := d.Pool.Exec(ctx, query, alertID, userID, recipient, providerID, at)
	if err != nil {
		return fmt.Errorf("failed to record success (alert %d, user %d): %w", alertID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no delivery record for alert %d user %d", alertID, userID)
	}
	return nil
}

// RecordFailure marks the attempt failed. A record that already reached
// sent keeps that status; sent is terminal.
func (d *DB) RecordFailure(ctx context.Context, alertID, userID int64, recipient, errMsg string, at time.Time) error {
	query := `
        UPDATE delivery_records
        SET status = CASE WHEN status = 'sent' THEN status ELSE 'failed' END,
            recipient = $3,
            error_message = $4,
            attempt_count = attempt_count + 1,
            last_attempt_at = $5,
            updated_at = now()
        WHERE alert_id = $1 AND user_id = $2`
	tag, err := d.Pool.Exec(ctx, query, alertID, userID, recipient, errMsg, at)
	if err != nil {
		return fmt.Errorf("failed to record failure (alert %d, user %d): %w", alertID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no delivery record for alert %d user %d", alertID, userID)
	}
	return nil
}

func (d *DB) ListByAlert(ctx context.Context, alertID int64) ([]models.DeliveryRecord, error) {
	query := `SELECT` + deliveryColumns + `
        FROM delivery_records
        WHERE alert_id = $1
        ORDER BY last_attempt_at DESC NULLS LAST, id`
	return d.listDeliveries(ctx, query, alertID)
}

func (d *DB) ListFailed(ctx context.Context, alertID int64) ([]models.DeliveryRecord, error) {
	query := `SELECT` + deliveryColumns + `
        FROM delivery_records
        WHERE alert_id = $1 AND status = 'failed'
        ORDER BY last_attempt_at DESC NULLS LAST, id`
	return d.listDeliveries(ctx, query, alertID)
}

func (d *DB) listDeliveries(ctx context.Context, query string, args ...any) ([]models.DeliveryRecord, error) {
	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery records: %w", err)
	}
	defer rows.Close()

	var records []models.DeliveryRecord
	for rows.Next() {
		r, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
