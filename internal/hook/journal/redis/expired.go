package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
)

// Expired returns up to limit expired tasks, most recently expired first. limit <= 0 returns all.
func (j *Journal) Expired(ctx context.Context, limit int) ([]model.DeliveryTask, error) {
	start := time.Now()
	var err error
	defer func() {
		j.metrics.Observe("expired", err, start)
	}()

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := j.client.ZRevRange(ctx, j.expiredKey(), 0, stop).Result()
	if err != nil {
		err = fmt.Errorf("list expired tasks: %w", err)
		return nil, err
	}
	tasks, err := j.load(ctx, ids)
	return tasks, err
}
