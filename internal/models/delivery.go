package models

import "time"

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryRecord is one (alert, recipient) attempt lineage. A retry mutates
// the existing record; it never creates a second row for the same pair.
type DeliveryRecord struct {
	ID                int64          `json:"id"`
	AlertID           int64          `json:"alert_id"`
	UserID            int64          `json:"user_id"`
	Channel           Channel        `json:"channel"`
	Recipient         string         `json:"recipient"`
	Status            DeliveryStatus `json:"status"`
	ProviderMessageID string         `json:"provider_message_id,omitempty"`
	ErrorMessage      string         `json:"error_message,omitempty"`
	AttemptCount      int            `json:"attempt_count"`
	LastAttemptAt     *time.Time     `json:"last_attempt_at,omitempty"`
	DeliveredAt       *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type ChannelStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type DeliveryStats struct {
	Sent      int                      `json:"sent"`
	Failed    int                      `json:"failed"`
	ByChannel map[Channel]ChannelStats `json:"by_channel"`
}

// PerRecipientResult is the outcome of one recipient's dispatch inside a
// batch send. Failures here never abort the batch.
type PerRecipientResult struct {
	UserID            int64          `json:"user_id"`
	Recipient         string         `json:"recipient"`
	Channel           Channel        `json:"channel"`
	Status            DeliveryStatus `json:"status"`
	ProviderMessageID string         `json:"provider_message_id,omitempty"`
	Error             string         `json:"error,omitempty"`
}

type DeliveryReport struct {
	AlertID int64                `json:"alert_id"`
	Results []PerRecipientResult `json:"results"`
	Stats   DeliveryStats        `json:"stats"`
}

type RetryReport struct {
	AlertID     int64                `json:"alert_id"`
	Reattempted int                  `json:"reattempted"`
	Recovered   int                  `json:"recovered"`
	StillFailed int                  `json:"still_failed"`
	Results     []PerRecipientResult `json:"results"`
}

// DeliverySummary answers "how did delivery of this alert go overall".
type DeliverySummary struct {
	AlertID     int64            `json:"alert_id"`
	Total       int              `json:"total"`
	Sent        int              `json:"sent"`
	Failed      int              `json:"failed"`
	Pending     int              `json:"pending"`
	SuccessRate float64          `json:"success_rate"`
	Records     []DeliveryRecord `json:"records"`
}
