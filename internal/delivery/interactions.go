package delivery

import (
	"context"
	"fmt"
	"time"

	"alerting-platform/internal/models"
)

// Recipient-side operations. These run with the caller's own identity, no
// admin capability required; the interaction row is created on first touch.

func (e *Engine) MarkRead(ctx context.Context, caller models.Caller, alertID int64) error {
	if _, err := e.alerts.GetAlert(ctx, alertID); err != nil {
		return fmt.Errorf("mark read alert %d: %w", alertID, err)
	}
	if _, err := e.interactions.Ensure(ctx, alertID, caller.UserID); err != nil {
		return fmt.Errorf("mark read alert %d: %w", alertID, err)
	}
	if err := e.interactions.MarkRead(ctx, alertID, caller.UserID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark read alert %d: %w", alertID, err)
	}
	return nil
}

func (e *Engine) Snooze(ctx context.Context, caller models.Caller, alertID int64, hours int) error {
	if hours < 1 {
		return fmt.Errorf("%w: snooze hours must be at least 1", models.ErrInvalidInput)
	}
	if _, err := e.alerts.GetAlert(ctx, alertID); err != nil {
		return fmt.Errorf("snooze alert %d: %w", alertID, err)
	}
	if _, err := e.interactions.Ensure(ctx, alertID, caller.UserID); err != nil {
		return fmt.Errorf("snooze alert %d: %w", alertID, err)
	}
	until := time.Now().UTC().Add(time.Duration(hours) * time.Hour)
	if err := e.interactions.Snooze(ctx, alertID, caller.UserID, until); err != nil {
		return fmt.Errorf("snooze alert %d: %w", alertID, err)
	}
	return nil
}

func (e *Engine) Unsnooze(ctx context.Context, caller models.Caller, alertID int64) error {
	if _, err := e.alerts.GetAlert(ctx, alertID); err != nil {
		return fmt.Errorf("unsnooze alert %d: %w", alertID, err)
	}
	if _, err := e.interactions.Ensure(ctx, alertID, caller.UserID); err != nil {
		return fmt.Errorf("unsnooze alert %d: %w", alertID, err)
	}
	if err := e.interactions.Unsnooze(ctx, alertID, caller.UserID); err != nil {
		return fmt.Errorf("unsnooze alert %d: %w", alertID, err)
	}
	return nil
}
