// Package memory keeps the delivery journal in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

// Journal loses in-flight tasks on restart; expired tasks are kept until the process exits.
type Journal struct {
	mu      sync.RWMutex
	pending map[string]model.DeliveryTask
	expired map[string]model.DeliveryTask
}

// New returns an empty Journal.
func New() *Journal {
	return &Journal{
		pending: make(map[string]model.DeliveryTask),
		expired: make(map[string]model.DeliveryTask),
	}
}

// Save records the task's current state.
func (j *Journal) Save(ctx context.Context, task model.DeliveryTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	switch {
	case task.State == model.DeliveryExpired:
		delete(j.pending, task.ID)
		j.expired[task.ID] = task
	case task.State.Terminal():
		delete(j.pending, task.ID)
	default:
		j.pending[task.ID] = task
	}
	return nil
}

// Pending returns non-terminal tasks, oldest first.
func (j *Journal) Pending(ctx context.Context) ([]model.DeliveryTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	tasks := make([]model.DeliveryTask, 0, len(j.pending))
	for _, task := range j.pending {
		tasks = append(tasks, task)
	}
	j.mu.RUnlock()

	sort.Slice(tasks, func(a, b int) bool {
		if tasks[a].CreatedAt.Equal(tasks[b].CreatedAt) {
			return tasks[a].ID < tasks[b].ID
		}
		return tasks[a].CreatedAt.Before(tasks[b].CreatedAt)
	})
	return tasks, nil
}

// Expired returns up to limit expired tasks, most recently expired first. limit <= 0 returns all.
func (j *Journal) Expired(ctx context.Context, limit int) ([]model.DeliveryTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	tasks := make([]model.DeliveryTask, 0, len(j.expired))
	for _, task := range j.expired {
		tasks = append(tasks, task)
	}
	j.mu.RUnlock()

	sort.Slice(tasks, func(a, b int) bool {
		if tasks[a].UpdatedAt.Equal(tasks[b].UpdatedAt) {
			return tasks[a].ID > tasks[b].ID
		}
		return tasks[a].UpdatedAt.After(tasks[b].UpdatedAt)
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}
