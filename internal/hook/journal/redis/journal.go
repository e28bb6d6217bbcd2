// Package redis journals delivery tasks in Redis so in-flight work survives restarts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	goredis "github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

const defaultPrefix = "bithook:"

type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Journal keeps every task as JSON in one hash, non-terminal ids in a set and
// expired ids in a sorted set scored by their last update.
type Journal struct {
	client  goredis.UniversalClient
	metrics Metrics
	prefix  string
}

// NewJournal connects using a redis:// URL.
func NewJournal(url string, metrics Metrics) (*Journal, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	if metrics == nil {
		return nil, errors.New("journal metrics is required")
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return New(goredis.NewClient(opts), metrics), nil
}

// New wraps an existing client, so the journal can share it with other stores.
func New(client goredis.UniversalClient, metrics Metrics) *Journal {
	return &Journal{client: client, metrics: metrics, prefix: defaultPrefix}
}

// Ping verifies connectivity.
func (j *Journal) Ping(ctx context.Context) error {
	return j.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (j *Journal) Close() error {
	return j.client.Close()
}

func (j *Journal) tasksKey() string   { return j.prefix + "tasks" }
func (j *Journal) pendingKey() string { return j.prefix + "pending" }
func (j *Journal) expiredKey() string { return j.prefix + "expired" }

// load fetches and decodes tasks by id; ids missing from the hash are skipped.
func (j *Journal) load(ctx context.Context, ids []string) ([]model.DeliveryTask, error) {
	if len(ids) == 0 {
		return []model.DeliveryTask{}, nil
	}
	values, err := j.client.HMGet(ctx, j.tasksKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	tasks := make([]model.DeliveryTask, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var task model.DeliveryTask
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", ids[i], err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
