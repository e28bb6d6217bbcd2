package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

// Pending returns non-terminal tasks, oldest first.
func (j *Journal) Pending(ctx context.Context) ([]model.DeliveryTask, error) {
	start := time.Now()
	var err error
	defer func() {
		j.metrics.Observe("pending", err, start)
	}()

	ids, err := j.client.SMembers(ctx, j.pendingKey()).Result()
	if err != nil {
		err = fmt.Errorf("list pending tasks: %w", err)
		return nil, err
	}
	tasks, err := j.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(a, b int) bool {
		if tasks[a].CreatedAt.Equal(tasks[b].CreatedAt) {
			return tasks[a].ID < tasks[b].ID
		}
		return tasks[a].CreatedAt.Before(tasks[b].CreatedAt)
	})
	return tasks, nil
}
