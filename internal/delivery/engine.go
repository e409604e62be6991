package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alerting-platform/internal/logging"
	"alerting-platform/internal/models"
	"alerting-platform/internal/providers"
)

const numLocks = 64

// Config carries the engine's tunables.
type Config struct {
	MaxWorkers         int
	SendTimeout        time.Duration
	MaxRemindersPerRun int
}

func (c *Config) applyDefaults() {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 10
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 15 * time.Second
	}
	if c.MaxRemindersPerRun <= 0 {
		c.MaxRemindersPerRun = 100
	}
}

// Engine orchestrates audience resolution, per-recipient sender dispatch,
// and delivery-record writes. One recipient's failure never aborts the rest
// of the batch.
type Engine struct {
	alerts       AlertStore
	users        UserDirectory
	deliveries   DeliveryStore
	interactions InteractionStore
	senders      *providers.Registry
	resolver     *Resolver
	log          *logging.Logger
	cfg          Config

	// Striped per-(alert,user) locks serialize writes to a single delivery
	// record when a manual send races a reminder run.
	locks [numLocks]sync.Mutex
}

func New(
	alerts AlertStore,
	users UserDirectory,
	deliveries DeliveryStore,
	interactions InteractionStore,
	senders *providers.Registry,
	log *logging.Logger,
	cfg Config,
) *Engine {
	cfg.applyDefaults()
	return &Engine{
		alerts:       alerts,
		users:        users,
		deliveries:   deliveries,
		interactions: interactions,
		senders:      senders,
		resolver:     NewResolver(users),
		log:          log,
		cfg:          cfg,
	}
}

func (e *Engine) lockFor(alertID, userID int64) *sync.Mutex {
	h := uint64(alertID)*2654435761 + uint64(userID)
	return &e.locks[h%numLocks]
}

// Send resolves the alert's audience and dispatches to every recipient.
// An empty audience yields a report with zero results, not an error.
func (e *Engine) Send(ctx context.Context, caller models.Caller, alertID int64) (*models.DeliveryReport, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrPermissionDenied
	}
	alert, err := e.alerts.GetAlert(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("send alert %d: %w", alertID, err)
	}
	audience, err := e.resolver.Resolve(ctx, alert)
	if err != nil {
		return nil, fmt.Errorf("send alert %d: %w", alertID, err)
	}

	report := &models.DeliveryReport{
		AlertID: alertID,
		Stats:   models.DeliveryStats{ByChannel: make(map[models.Channel]models.ChannelStats)},
	}
	if len(audience) == 0 {
		e.log.Infof("alert %d resolved to an empty audience, nothing to send", alertID)
		return report, nil
	}

	report.Results = e.fanOut(ctx, alert, audience, false)
	for _, res := range report.Results {
		accumulate(&report.Stats, res)
	}
	return report, nil
}

// Retry re-attempts only records currently failed for the alert. Records
// that were already sent are untouched.
func (e *Engine) Retry(ctx context.Context, caller models.Caller, alertID int64) (*models.RetryReport, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrPermissionDenied
	}
	alert, err := e.alerts.GetAlert(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("retry alert %d: %w", alertID, err)
	}
	failed, err := e.deliveries.ListFailed(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("retry alert %d: %w", alertID, err)
	}

	report := &models.RetryReport{AlertID: alertID}
	if len(failed) == 0 {
		return report, nil
	}

	ids := make([]int64, 0, len(failed))
	for _, rec := range failed {
		ids = append(ids, rec.UserID)
	}
	users, err := e.users.ActiveUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("retry alert %d: %w", alertID, err)
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	now := time.Now().UTC()
	var targets []models.User
	for _, rec := range failed {
		u, ok := byID[rec.UserID]
		if !ok {
			// Recipient was deactivated since the original send.
			msg := "recipient is no longer active"
			_ = e.deliveries.RecordFailure(ctx, alertID, rec.UserID, rec.Recipient, msg, now)
			report.Results = append(report.Results, models.PerRecipientResult{
				UserID:    rec.UserID,
				Recipient: rec.Recipient,
				Channel:   rec.Channel,
				Status:    models.DeliveryFailed,
				Error:     msg,
			})
			report.StillFailed++
			continue
		}
		targets = append(targets, u)
	}

	results := e.fanOut(ctx, alert, targets, false)
	report.Results = append(report.Results, results...)
	report.Reattempted = len(failed)
	for _, res := range results {
		if res.Status == models.DeliverySent {
			report.Recovered++
		} else {
			report.StillFailed++
		}
	}
	return report, nil
}

// Status summarizes delivery of one alert, full log most recent first.
func (e *Engine) Status(ctx context.Context, caller models.Caller, alertID int64) (*models.DeliverySummary, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrPermissionDenied
	}
	if _, err := e.alerts.GetAlert(ctx, alertID); err != nil {
		return nil, fmt.Errorf("delivery status for alert %d: %w", alertID, err)
	}
	records, err := e.deliveries.ListByAlert(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("delivery status for alert %d: %w", alertID, err)
	}

	summary := &models.DeliverySummary{AlertID: alertID, Total: len(records), Records: records}
	for _, rec := range records {
		switch rec.Status {
		case models.DeliverySent:
			summary.Sent++
		case models.DeliveryFailed:
			summary.Failed++
		default:
			summary.Pending++
		}
	}
	if summary.Total > 0 {
		summary.SuccessRate = float64(summary.Sent) / float64(summary.Total) * 100
	}
	return summary, nil
}

// SendReminder runs the single-recipient send path for a reminder dispatch.
func (e *Engine) SendReminder(ctx context.Context, alert *models.Alert, user models.User) models.PerRecipientResult {
	var once sync.Once
	return e.deliverTo(ctx, alert, user, true, &once)
}

// fanOut dispatches to each recipient over a bounded worker pool. Recipients
// are independent; order of results is not significant.
func (e *Engine) fanOut(ctx context.Context, alert *models.Alert, audience []models.User, reminder bool) []models.PerRecipientResult {
	workers := e.cfg.MaxWorkers
	if len(audience) < workers {
		workers = len(audience)
	}

	jobs := make(chan models.User)
	out := make(chan models.PerRecipientResult, len(audience))
	var unconfiguredOnce sync.Once

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				out <- e.deliverTo(ctx, alert, u, reminder, &unconfiguredOnce)
			}
		}()
	}
	for _, u := range audience {
		jobs <- u
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]models.PerRecipientResult, 0, len(audience))
	for res := range out {
		results = append(results, res)
	}
	return results
}

// deliverTo is the isolated per-recipient path: ensure the delivery record
// and interaction row, invoke the sender with a bounded timeout, write the
// outcome, and emit the structured delivery event.
func (e *Engine) deliverTo(ctx context.Context, alert *models.Alert, user models.User, reminder bool, unconfiguredOnce *sync.Once) models.PerRecipientResult {
	mu := e.lockFor(alert.ID, user.ID)
	mu.Lock()
	defer mu.Unlock()

	result := models.PerRecipientResult{UserID: user.ID, Channel: alert.Channel}

	// Being resolved as a recipient touches the pair for the first time.
	if _, err := e.interactions.Ensure(ctx, alert.ID, user.ID); err != nil {
		e.log.Errorf("ensure interaction for alert %d user %d: %v", alert.ID, user.ID, err)
	}

	rec, err := e.deliveries.EnsureRecord(ctx, alert.ID, user.ID, alert.Channel)
	if err != nil {
		result.Status = models.DeliveryFailed
		result.Error = fmt.Sprintf("delivery record: %v", err)
		return result
	}
	result.Recipient = rec.Recipient

	msg := providers.Message{
		AlertID:  alert.ID,
		Title:    alert.Title,
		Body:     alert.Body,
		Severity: alert.Severity,
		Reminder: reminder,
	}

	start := time.Now()
	defer func() {
		e.log.DeliveryEvent(alert.ID, user.ID, alert.Channel, result.Recipient, result.Status, time.Since(start), result.Error)
	}()

	var outcome providers.Outcome
	sender, ok := e.senders.For(alert.Channel)
	if !ok {
		outcome = providers.Outcome{Err: fmt.Errorf("%w: no sender for channel %q", models.ErrChannelUnconfigured, alert.Channel)}
	} else {
		sendCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
		outcome = sender.Send(sendCtx, user, msg)
		cancel()
	}
	if outcome.Recipient != "" {
		result.Recipient = outcome.Recipient
	}

	now := time.Now().UTC()
	if outcome.OK {
		result.Status = models.DeliverySent
		result.ProviderMessageID = outcome.ProviderID
		if err := e.deliveries.RecordSuccess(ctx, alert.ID, user.ID, result.Recipient, outcome.ProviderID, now); err != nil {
			e.log.Errorf("record success for alert %d user %d: %v", alert.ID, user.ID, err)
		}
		return result
	}

	result.Status = models.DeliveryFailed
	result.Error = outcome.Err.Error()
	if errors.Is(outcome.Err, models.ErrChannelUnconfigured) {
		unconfiguredOnce.Do(func() {
			e.log.Errorf("channel %s is not configured, all its deliveries in this batch will fail", alert.Channel)
		})
	}
	if err := e.deliveries.RecordFailure(ctx, alert.ID, user.ID, result.Recipient, result.Error, now); err != nil {
		e.log.Errorf("record failure for alert %d user %d: %v", alert.ID, user.ID, err)
	}
	return result
}

func accumulate(stats *models.DeliveryStats, res models.PerRecipientResult) {
	ch := stats.ByChannel[res.Channel]
	if res.Status == models.DeliverySent {
		stats.Sent++
		ch.Sent++
	} else {
		stats.Failed++
		ch.Failed++
	}
	stats.ByChannel[res.Channel] = ch
}
