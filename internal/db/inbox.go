package db

import (
	"context"
	"fmt"

	"alerting-platform/internal/models"
)

func (d *DB) AddMessage(ctx context.Context, msg models.InAppMessage) error {
	query := `
        INSERT INTO inbox_messages (id, alert_id, user_id, title, body, severity, reminder, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := d.Pool.Exec(ctx, query,
		msg.ID, msg.AlertID, msg.UserID, msg.Title, msg.Body, msg.Severity, msg.Reminder, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add inbox message: %w", err)
	}
	return nil
}

func (d *DB) MessagesByUser(ctx context.Context, userID int64, limit int) ([]models.InAppMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
        SELECT id, alert_id, user_id, title, body, severity, reminder, created_at
        FROM inbox_messages
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2`
	rows, err := d.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages for user %d: %w", userID, err)
	}
	defer rows.Close()

	var messages []models.InAppMessage
	for rows.Next() {
		var m models.InAppMessage
		if err := rows.Scan(&m.ID, &m.AlertID, &m.UserID, &m.Title, &m.Body, &m.Severity, &m.Reminder, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inbox message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
