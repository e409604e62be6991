package models

import "time"

// InAppMessage is the inbox row the in-app channel writes. "Delivered" means
// this row exists; whether the user has seen it is RecipientInteraction.IsRead.
type InAppMessage struct {
	ID        string    `json:"id"`
	AlertID   int64     `json:"alert_id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Severity  Severity  `json:"severity"`
	Reminder  bool      `json:"reminder"`
	CreatedAt time.Time `json:"created_at"`
}
