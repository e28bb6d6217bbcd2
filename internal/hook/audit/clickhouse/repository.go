// Package clickhouse writes the append-only delivery audit trail to ClickHouse.
package clickhouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/pkg/batcher"
	"go.uber.org/zap"
)

type Repository struct {
	conn    Conn
	metrics Metrics
	batcher *batcher.Batcher[model.DeliveryEvent]
}

// NewRepository opens ClickHouse and prepares the event batcher; call Start before Record.
func NewRepository(dsn string, metrics Metrics, cfg batcher.Config, logger *zap.Logger) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return newRepository(conn, metrics, cfg, logger), nil
}

func newRepository(conn Conn, metrics Metrics, cfg batcher.Config, logger *zap.Logger) *Repository {
	r := &Repository{conn: conn, metrics: metrics}
	r.batcher = batcher.New(logger.Named("audit"), r.InsertDeliveryEvents, cfg)
	return r
}

// Start runs the background batch flusher.
func (r *Repository) Start(ctx context.Context) {
	r.batcher.Start(ctx)
}

// Close flushes buffered events and closes the connection.
func (r *Repository) Close() error {
	r.batcher.Stop()
	return r.conn.Close()
}

// Record queues an event for the next batch insert.
func (r *Repository) Record(ctx context.Context, event model.DeliveryEvent) error {
	if err := r.batcher.Add(ctx, event); err != nil {
		return fmt.Errorf("queue delivery event: %w", err)
	}
	return nil
}
