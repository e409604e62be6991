package delivery

import (
	"context"
	"fmt"
	"time"

	"alerting-platform/internal/models"
)

// The two recurring jobs the scheduler drives. Both return a human-readable
// summary that ends up in the task's last_result.

// DispatchDueReminders walks every currently-active alert with reminders
// enabled and re-delivers it to each recipient whose interaction state says
// a reminder is due. last_reminded_at is stamped whether or not the send
// succeeded, so a permanently failing channel cannot hot-loop.
func (e *Engine) DispatchDueReminders(ctx context.Context) (string, error) {
	alerts, err := e.alerts.ListReminderAlerts(ctx)
	if err != nil {
		return "", fmt.Errorf("list reminder alerts: %w", err)
	}

	dispatched, failed := 0, 0
	capped := false

alerts:
	for i := range alerts {
		alert := &alerts[i]
		if !alert.IsCurrentlyActive(time.Now().UTC()) {
			continue
		}

		audience, err := e.resolver.Resolve(ctx, alert)
		if err != nil {
			e.log.Errorf("reminder run: resolve audience for alert %d: %v", alert.ID, err)
			continue
		}

		for _, user := range audience {
			if dispatched >= e.cfg.MaxRemindersPerRun {
				capped = true
				break alerts
			}

			inter, err := e.interactions.Ensure(ctx, alert.ID, user.ID)
			if err != nil {
				e.log.Errorf("reminder run: ensure interaction alert %d user %d: %v", alert.ID, user.ID, err)
				continue
			}
			if !IsReminderDue(alert, inter, time.Now().UTC()) {
				continue
			}

			res := e.SendReminder(ctx, alert, user)
			// A failed send still counts as a reminder attempt.
			if err := e.interactions.SetLastReminded(ctx, alert.ID, user.ID, time.Now().UTC()); err != nil {
				e.log.Errorf("reminder run: stamp last_reminded alert %d user %d: %v", alert.ID, user.ID, err)
			}

			dispatched++
			if res.Status != models.DeliverySent {
				failed++
			}
		}
	}

	msg := fmt.Sprintf("dispatched %d reminders (%d failed)", dispatched, failed)
	if capped {
		msg += fmt.Sprintf(", stopped at the per-run cap of %d", e.cfg.MaxRemindersPerRun)
	}
	return msg, nil
}

// ResetExpiredSnoozes clears snoozes whose deadline has passed. Running it
// twice with no new expirations is a no-op.
func (e *Engine) ResetExpiredSnoozes(ctx context.Context) (string, error) {
	n, err := e.interactions.ResetExpiredSnoozes(ctx, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("reset expired snoozes: %w", err)
	}
	return fmt.Sprintf("reset %d expired snoozes", n), nil
}
