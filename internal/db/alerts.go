package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"alerting-platform/internal/models"
)

const alertColumns = `
        id, title, body, severity, visibility, team_ids, user_ids, channel,
        starts_at, expires_at, reminder_enabled, reminder_frequency_hours,
        is_active, is_archived, created_by, created_at, updated_at`

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(
		&a.ID, &a.Title, &a.Body, &a.Severity, &a.Visibility, &a.TeamIDs, &a.UserIDs,
		&a.Channel, &a.StartsAt, &a.ExpiresAt, &a.ReminderEnabled, &a.ReminderFrequencyHours,
		&a.IsActive, &a.IsArchived, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *DB) GetAlert(ctx context.Context, id int64) (*models.Alert, error) {
	query := `SELECT` + alertColumns + ` FROM alerts WHERE id = $1`
	a, err := scanAlert(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("alert %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get alert %d: %w", id, err)
	}
	return a, nil
}

func (d *DB) ListReminderAlerts(ctx context.Context) ([]models.Alert, error) {
	query := `SELECT` + alertColumns + `
        FROM alerts
        WHERE is_active = true AND is_archived = false AND reminder_enabled = true
        ORDER BY id`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}
