package models

import "time"

// RecipientInteraction tracks one user's state for one alert. Rows are
// created lazily the first time the pair is touched, either by audience
// resolution or by the user interacting with the alert.
type RecipientInteraction struct {
	AlertID        int64      `json:"alert_id"`
	UserID         int64      `json:"user_id"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	IsSnoozed      bool       `json:"is_snoozed"`
	SnoozedUntil   *time.Time `json:"snoozed_until,omitempty"`
	LastRemindedAt *time.Time `json:"last_reminded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsCurrentlySnoozed must be used instead of the stored flag: once
// snoozed_until passes, the snooze is over even if the background reset
// task has not flipped is_snoozed yet.
func (ri *RecipientInteraction) IsCurrentlySnoozed(now time.Time) bool {
	return ri.IsSnoozed && ri.SnoozedUntil != nil && ri.SnoozedUntil.After(now)
}
