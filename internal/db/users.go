package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"alerting-platform/internal/models"
)

const userColumns = `
        id, email, full_name, COALESCE(phone, ''), COALESCE(telegram_chat_id, 0),
        team_id, role, is_active`

func scanUsers(rows pgx.Rows) ([]models.User, error) {
	defer rows.Close()
	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.TelegramChatID,
			&u.TeamID, &u.Role, &u.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (d *DB) ActiveUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE is_active = true ORDER BY id`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return scanUsers(rows)
}

func (d *DB) ActiveUsersByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE is_active = true AND id = ANY($1) ORDER BY id`
	rows, err := d.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by ids: %w", err)
	}
	return scanUsers(rows)
}

func (d *DB) ActiveTeamMembers(ctx context.Context, teamIDs []int64) ([]models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE is_active = true AND team_id = ANY($1) ORDER BY id`
	rows, err := d.Pool.Query(ctx, query, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return scanUsers(rows)
}
