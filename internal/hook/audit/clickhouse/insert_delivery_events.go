package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/pkg/safe"
)

const insertDeliveryEventsQuery = `
INSERT INTO delivery_events (
	task_id,
	txid,
	channel,
	output,
	state,
	attempt,
	status_code,
	error,
	occurred_at
) VALUES`

// InsertDeliveryEvents stores a batch of task transitions.
func (r *Repository) InsertDeliveryEvents(ctx context.Context, events []model.DeliveryEvent) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_delivery_events", err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertDeliveryEventsQuery)
	if err != nil {
		err = fmt.Errorf("prepare delivery events batch: %w", err)
		return err
	}

	for _, ev := range events {
		var (
			attempt uint32
			status  uint16
		)
		if attempt, err = safe.Uint32(ev.Attempt); err != nil {
			err = fmt.Errorf("delivery event %s attempt: %w", ev.TaskID, err)
			return err
		}
		if status, err = safe.Uint16(ev.StatusCode); err != nil {
			err = fmt.Errorf("delivery event %s status: %w", ev.TaskID, err)
			return err
		}
		if err = batch.Append(
			ev.TaskID,
			ev.TxID,
			ev.Channel,
			ev.Descriptor,
			string(ev.State),
			attempt,
			status,
			ev.Error,
			ev.OccurredAt,
		); err != nil {
			err = fmt.Errorf("append delivery event: %w", err)
			return err
		}
	}

	if err = batch.Send(); err != nil {
		err = fmt.Errorf("insert delivery events: %w", err)
		return err
	}
	return nil
}
