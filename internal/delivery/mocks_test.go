package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"alerting-platform/internal/models"
	"alerting-platform/internal/providers"
)

// In-memory store fakes. They mirror the pgx implementations closely enough
// to exercise the engine's upsert and terminal-status semantics, and they
// are safe under the engine's concurrent fan-out.

type memAlerts struct {
	mu     sync.Mutex
	alerts map[int64]models.Alert
}

func newMemAlerts(alerts ...models.Alert) *memAlerts {
	m := &memAlerts{alerts: make(map[int64]models.Alert)}
	for _, a := range alerts {
		m.alerts[a.ID] = a
	}
	return m
}

func (m *memAlerts) GetAlert(_ context.Context, id int64) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert %d: %w", id, models.ErrNotFound)
	}
	return &a, nil
}

func (m *memAlerts) ListReminderAlerts(_ context.Context) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Alert
	for _, a := range m.alerts {
		if a.IsActive && !a.IsArchived && a.ReminderEnabled {
			out = append(out, a)
		}
	}
	return out, nil
}

type memUsers struct {
	users []models.User
}

func newMemUsers(users ...models.User) *memUsers {
	return &memUsers{users: users}
}

func (m *memUsers) ActiveUsers(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) ActiveUsersByIDs(_ context.Context, ids []int64) ([]models.User, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []models.User
	for _, u := range m.users {
		if _, ok := want[u.ID]; ok && u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) ActiveTeamMembers(_ context.Context, teamIDs []int64) ([]models.User, error) {
	want := make(map[int64]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		want[id] = struct{}{}
	}
	var out []models.User
	for _, u := range m.users {
		if u.TeamID == nil || !u.IsActive {
			continue
		}
		if _, ok := want[*u.TeamID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type deliveryKey struct {
	alertID int64
	userID  int64
}

type memDeliveries struct {
	mu      sync.Mutex
	nextID  int64
	records map[deliveryKey]*models.DeliveryRecord
}

func newMemDeliveries() *memDeliveries {
	return &memDeliveries{records: make(map[deliveryKey]*models.DeliveryRecord)}
}

func (m *memDeliveries) EnsureRecord(_ context.Context, alertID, userID int64, channel models.Channel) (*models.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := deliveryKey{alertID, userID}
	if rec, ok := m.records[key]; ok {
		cp := *rec
		return &cp, nil
	}
	m.nextID++
	rec := &models.DeliveryRecord{
		ID:        m.nextID,
		AlertID:   alertID,
		UserID:    userID,
		Channel:   channel,
		Status:    models.DeliveryPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.records[key] = rec
	cp := *rec
	return &cp, nil
}

func (m *memDeliveries) RecordSuccess(_ context.Context, alertID, userID int64, recipient, providerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[deliveryKey{alertID, userID}]
	if !ok {
		return fmt.Errorf("no delivery record for alert %d user %d", alertID, userID)
	}
	rec.Status = models.DeliverySent
	rec.Recipient = recipient
	rec.ProviderMessageID = providerID
	rec.ErrorMessage = ""
	rec.AttemptCount++
	t := at
	rec.LastAttemptAt = &t
	if rec.DeliveredAt == nil {
		rec.DeliveredAt = &t
	}
	return nil
}

func (m *memDeliveries) RecordFailure(_ context.Context, alertID, userID int64, recipient, errMsg string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[deliveryKey{alertID, userID}]
	if !ok {
		return fmt.Errorf("no delivery record for alert %d user %d", alertID, userID)
	}
	if rec.Status != models.DeliverySent {
		rec.Status = models.DeliveryFailed
	}
	rec.Recipient = recipient
	rec.ErrorMessage = errMsg
	rec.AttemptCount++
	t := at
	rec.LastAttemptAt = &t
	return nil
}

func (m *memDeliveries) ListByAlert(_ context.Context, alertID int64) ([]models.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DeliveryRecord
	for key, rec := range m.records {
		if key.alertID == alertID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memDeliveries) ListFailed(_ context.Context, alertID int64) ([]models.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DeliveryRecord
	for key, rec := range m.records {
		if key.alertID == alertID && rec.Status == models.DeliveryFailed {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memDeliveries) get(alertID, userID int64) *models.DeliveryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[deliveryKey{alertID, userID}]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (m *memDeliveries) seed(rec models.DeliveryRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	cp := rec
	m.records[deliveryKey{rec.AlertID, rec.UserID}] = &cp
}

type memInteractions struct {
	mu   sync.Mutex
	rows map[deliveryKey]*models.RecipientInteraction
}

func newMemInteractions() *memInteractions {
	return &memInteractions{rows: make(map[deliveryKey]*models.RecipientInteraction)}
}

func (m *memInteractions) Ensure(_ context.Context, alertID, userID int64) (*models.RecipientInteraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := deliveryKey{alertID, userID}
	if row, ok := m.rows[key]; ok {
		cp := *row
		return &cp, nil
	}
	row := &models.RecipientInteraction{
		AlertID:   alertID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.rows[key] = row
	cp := *row
	return &cp, nil
}

func (m *memInteractions) MarkRead(_ context.Context, alertID, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey{alertID, userID}]
	if !ok {
		return fmt.Errorf("no interaction row for alert %d user %d", alertID, userID)
	}
	row.IsRead = true
	if row.ReadAt == nil {
		t := at
		row.ReadAt = &t
	}
	return nil
}

func (m *memInteractions) Snooze(_ context.Context, alertID, userID int64, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey{alertID, userID}]
	if !ok {
		return fmt.Errorf("no interaction row for alert %d user %d", alertID, userID)
	}
	row.IsSnoozed = true
	t := until
	row.SnoozedUntil = &t
	return nil
}

func (m *memInteractions) Unsnooze(_ context.Context, alertID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey{alertID, userID}]
	if !ok {
		return fmt.Errorf("no interaction row for alert %d user %d", alertID, userID)
	}
	row.IsSnoozed = false
	row.SnoozedUntil = nil
	return nil
}

func (m *memInteractions) SetLastReminded(_ context.Context, alertID, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey{alertID, userID}]
	if !ok {
		return fmt.Errorf("no interaction row for alert %d user %d", alertID, userID)
	}
	t := at
	row.LastRemindedAt = &t
	return nil
}

func (m *memInteractions) ResetExpiredSnoozes(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.IsSnoozed && row.SnoozedUntil != nil && !row.SnoozedUntil.After(now) {
			row.IsSnoozed = false
			row.SnoozedUntil = nil
			n++
		}
	}
	return n, nil
}

func (m *memInteractions) get(alertID, userID int64) *models.RecipientInteraction {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[deliveryKey{alertID, userID}]
	if !ok {
		return nil
	}
	cp := *row
	return &cp
}

func (m *memInteractions) seed(row models.RecipientInteraction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := row
	m.rows[deliveryKey{row.AlertID, row.UserID}] = &cp
}

// fakeSender lets a test script the per-user outcome of one channel.
type fakeSender struct {
	channel models.Channel
	mu      sync.Mutex
	calls   int
	send    func(user models.User, msg providers.Message) providers.Outcome
}

func (f *fakeSender) Channel() models.Channel {
	return f.channel
}

func (f *fakeSender) Send(_ context.Context, user models.User, msg providers.Message) providers.Outcome {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.send(user, msg)
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okSender(channel models.Channel) *fakeSender {
	return &fakeSender{
		channel: channel,
		send: func(user models.User, _ providers.Message) providers.Outcome {
			return providers.Outcome{
				OK:         true,
				Recipient:  fmt.Sprintf("user-%d", user.ID),
				ProviderID: fmt.Sprintf("prov-%d", user.ID),
			}
		},
	}
}
