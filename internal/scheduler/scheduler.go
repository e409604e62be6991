package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"alerting-platform/internal/logging"
	"alerting-platform/internal/models"
)

const (
	maxHistorySize = 1000
	recentResults  = 10
)

// Scheduler owns a registry of named recurring tasks and drives them on a
// polling loop. It is an ordinary lifecycle-managed value: construct one at
// startup, Stop it at shutdown, construct isolated ones in tests.
type Scheduler struct {
	log  *logging.Logger
	poll time.Duration

	mu      sync.Mutex
	tasks   map[string]*task
	order   []string
	running bool
	stop    chan struct{}
	history []models.TaskResult

	wg sync.WaitGroup
}

func New(log *logging.Logger, poll time.Duration) *Scheduler {
	if poll <= 0 {
		poll = time.Minute
	}
	return &Scheduler{
		log:   log,
		poll:  poll,
		tasks: make(map[string]*task),
	}
}

// Register adds a named recurring task. Re-registering a name replaces the
// definition and resets its counters.
func (s *Scheduler) Register(name string, intervalMinutes int, fn TaskFunc) error {
	if name == "" || fn == nil || intervalMinutes <= 0 {
		return fmt.Errorf("%w: task needs a name, a positive interval, and a function", models.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[name]; !exists {
		s.order = append(s.order, name)
	}
	s.tasks[name] = &task{
		name:     name,
		run:      fn,
		interval: time.Duration(intervalMinutes) * time.Minute,
		enabled:  true,
	}
	s.log.Infof("registered task %q (interval: %d minutes)", name, intervalMinutes)
	return nil
}

// Start launches the polling loop. Starting an already-running scheduler is
// a no-op that still reports success.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.log.Warnf("scheduler is already running")
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.stop)
	s.log.Infof("task scheduler started (poll interval %s)", s.poll)
}

// Stop prevents new ticks from starting tasks and waits for the loop to
// exit. An execution already in flight completes; Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.log.Warnf("scheduler is not running")
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Infof("task scheduler stopped")
}

// Running reports the registry's global on/off switch.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.runDue(time.Now())
		}
	}
}

// runDue executes every enabled task whose next_run has passed. Task
// failures are isolated: the loop itself never stops because one task
// errored.
func (s *Scheduler) runDue(now time.Time) {
	s.mu.Lock()
	var due []*task
	for _, name := range s.order {
		if t := s.tasks[name]; t.due(now) {
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		if _, err := s.execute(t, false); err != nil {
			// Single-flight collision with a manual run; next tick retries.
			s.log.Debugf("skipping %q: %v", t.name, err)
		}
	}
}

// execute runs one task under the single-flight guard. Periodic runs move
// next_run forward; manual runs leave the periodic schedule undisturbed so
// repeated triggers cannot drift it.
func (s *Scheduler) execute(t *task, manual bool) (*models.TaskResult, error) {
	if !t.executing.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", models.ErrAlreadyRunning, t.name)
	}
	defer t.executing.Store(false)

	start := time.Now()
	msg, err := t.run(context.Background())
	duration := time.Since(start)

	result := models.TaskResult{
		TaskName:  t.name,
		Success:   err == nil,
		Message:   msg,
		Duration:  duration,
		Timestamp: time.Now(),
	}
	if err != nil {
		result.Message = err.Error()
	}

	s.mu.Lock()
	now := time.Now()
	t.lastRun = now
	if !manual {
		t.nextRun = now.Add(t.interval)
	}
	t.executionCount++
	if err != nil {
		t.failureCount++
	}
	t.lastResult = &result
	s.history = append(s.history, result)
	if len(s.history) > maxHistorySize {
		s.history = s.history[len(s.history)-maxHistorySize:]
	}
	s.mu.Unlock()

	s.log.TaskEvent(result)
	return &result, nil
}

// RunTask executes the named task immediately, regardless of next_run. It
// is rejected with models.ErrAlreadyRunning while the same task is mid-
// execution; there is no queueing.
func (s *Scheduler) RunTask(name string) (*models.TaskResult, error) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: task %q", models.ErrNotFound, name)
	}
	return s.execute(t, true)
}

// SetEnabled flips one task's enabled flag. It has no effect on an
// execution already in flight.
func (s *Scheduler) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return fmt.Errorf("%w: task %q", models.ErrNotFound, name)
	}
	t.enabled = enabled
	s.log.Infof("task %q enabled=%v", name, enabled)
	return nil
}

// Status snapshots the registry and the most recent executions.
func (s *Scheduler) Status() models.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := models.SchedulerStatus{
		Running:    s.running,
		TotalTasks: len(s.tasks),
	}
	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.Strings(names)
	for _, name := range names {
		t := s.tasks[name]
		if t.enabled {
			st.EnabledTasks++
		}
		st.Tasks = append(st.Tasks, t.status())
	}

	n := len(s.history)
	if n > recentResults {
		n = recentResults
	}
	st.RecentExecutions = append(st.RecentExecutions, s.history[len(s.history)-n:]...)
	return st
}
