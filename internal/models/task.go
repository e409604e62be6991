package models

import "time"

// TaskResult is the recorded outcome of one scheduled task execution.
type TaskResult struct {
	TaskName  string        `json:"task_name"`
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// TaskStatus is a point-in-time snapshot of one registered task.
type TaskStatus struct {
	Name            string      `json:"name"`
	IntervalMinutes int         `json:"interval_minutes"`
	Enabled         bool        `json:"enabled"`
	LastRunAt       *time.Time  `json:"last_run_at,omitempty"`
	NextRunAt       *time.Time  `json:"next_run_at,omitempty"`
	ExecutionCount  int         `json:"execution_count"`
	FailureCount    int         `json:"failure_count"`
	LastResult      *TaskResult `json:"last_result,omitempty"`
}

type SchedulerStatus struct {
	Running          bool         `json:"running"`
	TotalTasks       int          `json:"total_tasks"`
	EnabledTasks     int          `json:"enabled_tasks"`
	Tasks            []TaskStatus `json:"tasks"`
	RecentExecutions []TaskResult `json:"recent_executions"`
}
