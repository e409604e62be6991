package delivery

import (
	"time"

	"alerting-platform/internal/models"
)

// IsReminderDue decides whether a recipient should be reminded now. Pure
// function: it holds no state beyond what the interaction row carries and is
// re-evaluated per recipient on every reminder run.
func IsReminderDue(alert *models.Alert, inter *models.RecipientInteraction, now time.Time) bool {
	if !alert.ReminderEnabled {
		return false
	}
	if !alert.IsCurrentlyActive(now) {
		return false
	}
	if inter.IsRead {
		return false
	}
	if inter.IsCurrentlySnoozed(now) {
		return false
	}
	if inter.LastRemindedAt != nil {
		frequency := time.Duration(alert.ReminderFrequencyHours) * time.Hour
		if now.Sub(*inter.LastRemindedAt) < frequency {
			return false
		}
	}
	return true
}
