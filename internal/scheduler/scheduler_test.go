package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alerting-platform/internal/logging"
	"alerting-platform/internal/models"
)

func newTestScheduler() *Scheduler {
	return New(logging.NewNop(), time.Minute)
}

func noop(context.Context) (string, error) {
	return "ok", nil
}

func TestRegisterValidation(t *testing.T) {
	s := newTestScheduler()

	assert.ErrorIs(t, s.Register("", 30, noop), models.ErrInvalidInput)
	assert.ErrorIs(t, s.Register("job", 0, noop), models.ErrInvalidInput)
	assert.ErrorIs(t, s.Register("job", 30, nil), models.ErrInvalidInput)
	assert.NoError(t, s.Register("job", 30, noop))
}

func TestRunDueExecutesOverdueTasks(t *testing.T) {
	s := newTestScheduler()
	var mu sync.Mutex
	ran := 0
	require.NoError(t, s.Register("job", 30, func(context.Context) (string, error) {
		mu.Lock()
		ran++
		mu.Unlock()
		return "done", nil
	}))

	now := time.Now()

	// A freshly registered task has no next_run and is due immediately.
	s.runDue(now)
	mu.Lock()
	assert.Equal(t, 1, ran)
	mu.Unlock()

	st := s.Status().Tasks[0]
	assert.Equal(t, 1, st.ExecutionCount)
	require.NotNil(t, st.NextRunAt)
	assert.WithinDuration(t, now.Add(30*time.Minute), *st.NextRunAt, 5*time.Second)
	require.NotNil(t, st.LastRunAt)
	require.NotNil(t, st.LastResult)
	assert.True(t, st.LastResult.Success)
	assert.Equal(t, "done", st.LastResult.Message)

	// Not due again until the interval elapses.
	s.runDue(now.Add(29 * time.Minute))
	mu.Lock()
	assert.Equal(t, 1, ran)
	mu.Unlock()

	s.runDue(now.Add(31 * time.Minute))
	mu.Lock()
	assert.Equal(t, 2, ran)
	mu.Unlock()
}

func TestRunDueSkipsDisabledTasks(t *testing.T) {
	s := newTestScheduler()
	ran := false
	require.NoError(t, s.Register("job", 30, func(context.Context) (string, error) {
		ran = true
		return "", nil
	}))
	require.NoError(t, s.SetEnabled("job", false))

	s.runDue(time.Now())
	assert.False(t, ran)

	require.NoError(t, s.SetEnabled("job", true))
	s.runDue(time.Now())
	assert.True(t, ran)
}

func TestFailuresAreIsolatedPerTask(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register("bad", 30, func(context.Context) (string, error) {
		return "", errors.New("boom")
	}))
	secondRan := false
	require.NoError(t, s.Register("good", 30, func(context.Context) (string, error) {
		secondRan = true
		return "fine", nil
	}))

	s.runDue(time.Now())
	assert.True(t, secondRan, "a failing task must not block the others")

	st := s.Status()
	require.Len(t, st.Tasks, 2)
	for _, task := range st.Tasks {
		switch task.Name {
		case "bad":
			assert.Equal(t, 1, task.FailureCount)
			require.NotNil(t, task.LastResult)
			assert.False(t, task.LastResult.Success)
			assert.Equal(t, "boom", task.LastResult.Message)
		case "good":
			assert.Zero(t, task.FailureCount)
		}
	}
}

func TestManualRunLeavesScheduleUndisturbed(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register("job", 30, noop))

	// Establish a periodic next_run first.
	s.runDue(time.Now())
	before := s.Status().Tasks[0]
	require.NotNil(t, before.NextRunAt)

	result, err := s.RunTask("job")
	require.NoError(t, err)
	assert.True(t, result.Success)

	after := s.Status().Tasks[0]
	assert.Equal(t, 2, after.ExecutionCount)
	require.NotNil(t, after.NextRunAt)
	assert.Equal(t, *before.NextRunAt, *after.NextRunAt)
	assert.True(t, after.LastRunAt.After(*before.LastRunAt) || after.LastRunAt.Equal(*before.LastRunAt))
}

func TestRunTaskUnknownName(t *testing.T) {
	s := newTestScheduler()

	_, err := s.RunTask("nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, s.SetEnabled("nope", true), models.ErrNotFound)
}

func TestConcurrentManualRunsAreRejected(t *testing.T) {
	s := newTestScheduler()
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.Register("slow", 30, func(context.Context) (string, error) {
		close(started)
		<-release
		return "done", nil
	}))

	errCh := make(chan error, 1)
	go func() {
		_, err := s.RunTask("slow")
		errCh <- err
	}()

	<-started
	_, err := s.RunTask("slow")
	assert.ErrorIs(t, err, models.ErrAlreadyRunning)

	close(release)
	require.NoError(t, <-errCh)

	// Only the first invocation was recorded.
	assert.Equal(t, 1, s.Status().Tasks[0].ExecutionCount)
}

func TestStartStopIdempotent(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register("job", 30, noop))

	assert.False(t, s.Running())
	s.Start()
	assert.True(t, s.Running())
	s.Start() // second start is a no-op
	assert.True(t, s.Running())

	s.Stop()
	assert.False(t, s.Running())
	s.Stop() // second stop is a no-op
	assert.False(t, s.Running())

	// A stopped scheduler can be started again.
	s.Start()
	assert.True(t, s.Running())
	s.Stop()
}

func TestStatusRecentExecutionsWindow(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register("job", 30, noop))

	for i := 0; i < 15; i++ {
		_, err := s.RunTask("job")
		require.NoError(t, err)
	}

	st := s.Status()
	assert.Equal(t, 15, st.Tasks[0].ExecutionCount)
	assert.Len(t, st.RecentExecutions, 10)
}

func TestStatusCountsEnabledTasks(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register("a", 10, noop))
	require.NoError(t, s.Register("b", 20, noop))
	require.NoError(t, s.SetEnabled("b", false))

	st := s.Status()
	assert.Equal(t, 2, st.TotalTasks)
	assert.Equal(t, 1, st.EnabledTasks)
	require.Len(t, st.Tasks, 2)
	assert.Equal(t, "a", st.Tasks[0].Name)
	assert.Equal(t, 10, st.Tasks[0].IntervalMinutes)
}

func TestReRegisterResetsCounters(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register("job", 30, noop))
	_, err := s.RunTask("job")
	require.NoError(t, err)
	require.Equal(t, 1, s.Status().Tasks[0].ExecutionCount)

	require.NoError(t, s.Register("job", 45, func(context.Context) (string, error) {
		return "v2", nil
	}))
	st := s.Status().Tasks[0]
	assert.Zero(t, st.ExecutionCount)
	assert.Equal(t, 45, st.IntervalMinutes)
	assert.Equal(t, 1, s.Status().TotalTasks)
}
