package model

import "time"

// TaskStatus is the lifecycle state of an asynchronously-triggered job.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal reports whether the status is completed or failed.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskKind distinguishes ingestion jobs from generation jobs.
type TaskKind string

const (
	TaskKindIngest   TaskKind = "ingest"
	TaskKindGenerate TaskKind = "generate"
)

// Task is an async job record tracked by the in-memory registry. Terminal
// tasks are purged after a short grace period; a query for a purged task ID
// yields a not-found result, not an error.
type Task struct {
	ID        string         `json:"task_id"`
	ClientID  string         `json:"client_id"`
	Kind      TaskKind       `json:"kind"`
	Status    TaskStatus     `json:"status"`
	Reason    string         `json:"reason,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	StartedAt time.Time      `json:"started_at"`
}
