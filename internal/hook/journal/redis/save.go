package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	goredis "github.com/redis/go-redis/v9"
)

// Save records the task's current state atomically.
// Delivered and dropped tasks leave the journal; expired ones move to the expired index.
func (j *Journal) Save(ctx context.Context, task model.DeliveryTask) error {
	start := time.Now()
	var err error
	defer func() {
		j.metrics.Observe("save", err, start)
	}()

	payload, err := json.Marshal(task)
	if err != nil {
		err = fmt.Errorf("encode task: %w", err)
		return err
	}

	_, err = j.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		switch {
		case task.State == model.DeliveryExpired:
			pipe.HSet(ctx, j.tasksKey(), task.ID, payload)
			pipe.SRem(ctx, j.pendingKey(), task.ID)
			pipe.ZAdd(ctx, j.expiredKey(), goredis.Z{
				Score:  float64(task.UpdatedAt.UnixMilli()),
				Member: task.ID,
			})
		case task.State.Terminal():
			pipe.HDel(ctx, j.tasksKey(), task.ID)
			pipe.SRem(ctx, j.pendingKey(), task.ID)
		default:
			pipe.HSet(ctx, j.tasksKey(), task.ID, payload)
			pipe.SAdd(ctx, j.pendingKey(), task.ID)
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("save task %s: %w", task.ID, err)
		return err
	}
	return nil
}
