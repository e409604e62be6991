package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"alerting-platform/internal/models"
)

// TaskFunc is one recurring job. It returns a summary message for
// last_result; a non-nil error marks the execution as failed.
type TaskFunc func(ctx context.Context) (string, error)

type task struct {
	name     string
	run      TaskFunc
	interval time.Duration
	enabled  bool

	lastRun        time.Time
	nextRun        time.Time // zero means due immediately
	executionCount int
	failureCount   int
	lastResult     *models.TaskResult

	// executing is the single-flight marker; it is checked-and-set
	// atomically by both the scheduler tick and manual run requests.
	executing atomic.Bool
}

func (t *task) due(now time.Time) bool {
	if !t.enabled {
		return false
	}
	if t.nextRun.IsZero() {
		return true
	}
	return !now.Before(t.nextRun)
}

func (t *task) status() models.TaskStatus {
	st := models.TaskStatus{
		Name:            t.name,
		IntervalMinutes: int(t.interval / time.Minute),
		Enabled:         t.enabled,
		ExecutionCount:  t.executionCount,
		FailureCount:    t.failureCount,
		LastResult:      t.lastResult,
	}
	if !t.lastRun.IsZero() {
		lr := t.lastRun
		st.LastRunAt = &lr
	}
	if !t.nextRun.IsZero() {
		nr := t.nextRun
		st.NextRunAt = &nr
	}
	return st
}
