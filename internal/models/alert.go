package models

import "time"

type Visibility string

const (
	VisibilityOrganization Visibility = "organization"
	VisibilityTeams        Visibility = "teams"
	VisibilityUsers        Visibility = "users"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelInApp    Channel = "in_app"
	ChannelTelegram Channel = "telegram"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is owned by the external CRUD layer; the core only reads it.
type Alert struct {
	ID                     int64      `json:"id"`
	Title                  string     `json:"title"`
	Body                   string     `json:"body"`
	Severity               Severity   `json:"severity"`
	Visibility             Visibility `json:"visibility"`
	TeamIDs                []int64    `json:"team_ids,omitempty"`
	UserIDs                []int64    `json:"user_ids,omitempty"`
	Channel                Channel    `json:"channel"`
	StartsAt               *time.Time `json:"starts_at,omitempty"`
	ExpiresAt              *time.Time `json:"expires_at,omitempty"`
	ReminderEnabled        bool       `json:"reminder_enabled"`
	ReminderFrequencyHours int        `json:"reminder_frequency_hours"`
	IsActive               bool       `json:"is_active"`
	IsArchived             bool       `json:"is_archived"`
	CreatedBy              int64      `json:"created_by"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// IsStarted reports whether the alert's start time has passed. A nil
// starts_at means the alert starts immediately.
func (a *Alert) IsStarted(now time.Time) bool {
	return a.StartsAt == nil || !now.Before(*a.StartsAt)
}

// IsExpired reports whether the alert's expiry time has passed.
func (a *Alert) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// IsCurrentlyActive is recomputed from now at every read, never stored.
func (a *Alert) IsCurrentlyActive(now time.Time) bool {
	return a.IsActive && !a.IsArchived && a.IsStarted(now) && !a.IsExpired(now)
}
