// Package task tracks the lifecycle of asynchronously-triggered ingestion
// and generation jobs.
package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/model"
)

// Registry is an in-memory, process-local task store. Terminal tasks are
// purged after the grace period to bound memory use; a lookup after purge
// reports not-found rather than an error.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*model.Task
	grace time.Duration
}

// NewRegistry creates a Registry with the given terminal-state grace period.
func NewRegistry(grace time.Duration) *Registry {
	return &Registry{
		tasks: make(map[string]*model.Task),
		grace: grace,
	}
}

// Create registers a new pending task and returns it.
func (r *Registry) Create(clientID string, kind model.TaskKind) model.Task {
	t := model.Task{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Kind:      kind,
		Status:    model.TaskStatusPending,
		StartedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.tasks[t.ID] = &t
	r.mu.Unlock()
	return t
}

// Start marks a task running.
func (r *Registry) Start(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.Status = model.TaskStatusRunning
	}
}

// Complete marks a task completed with its result payload and schedules the
// entry for purge.
func (r *Registry) Complete(id string, result map[string]any) {
	r.finish(id, model.TaskStatusCompleted, "", result)
}

// Fail marks a task failed with a human-readable reason and schedules the
// entry for purge.
func (r *Registry) Fail(id, reason string) {
	r.finish(id, model.TaskStatusFailed, reason, nil)
}

func (r *Registry) finish(id string, status model.TaskStatus, reason string, result map[string]any) {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if ok {
		t.Status = status
		t.Reason = reason
		t.Result = result
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	zap.L().Debug("task reached terminal state",
		zap.String("task_id", id),
		zap.String("status", string(status)),
	)
	time.AfterFunc(r.grace, func() {
		r.mu.Lock()
		delete(r.tasks, id)
		r.mu.Unlock()
	})
}

// Get returns a snapshot of the task, or false when the task is unknown or
// already cleaned up. Lookups never block task execution.
func (r *Registry) Get(id string) (model.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return *t, true
}

// Len reports the number of live task entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
