package main

import (
	"context"
	"fmt"
	"net/url"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/audit/clickhouse"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/journal/memory"
	redisjournal "github.com/goodnatureofminers/bithook-backend/internal/hook/journal/redis"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
	memregistry "github.com/goodnatureofminers/bithook-backend/internal/hook/registry/memory"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry/mongo"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/upstream"
	"github.com/goodnatureofminers/bithook-backend/internal/metrics"
	"github.com/goodnatureofminers/bithook-backend/pkg/batcher"
)

type subscriptionStore interface {
	InsertMany(ctx context.Context, descriptors []string, channel string) []registry.InsertResult
	Delete(ctx context.Context, id string) (int64, error)
	ListAll(ctx context.Context) ([]model.Subscription, error)
	FindByDescriptor(ctx context.Context, descriptor string) ([]model.Subscription, error)
}

type taskStore interface {
	Save(ctx context.Context, task model.DeliveryTask) error
	Pending(ctx context.Context) ([]model.DeliveryTask, error)
	Expired(ctx context.Context, limit int) ([]model.DeliveryTask, error)
}

func scheme(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse storage url: %w", err)
	}
	return u.Scheme, nil
}

func newRegistry(ctx context.Context, raw string) (subscriptionStore, func(), error) {
	s, err := scheme(raw)
	if err != nil {
		return nil, nil, err
	}
	switch s {
	case "memory":
		return memregistry.New(), func() {}, nil
	case "mongodb", "mongodb+srv":
		repo, err := mongo.NewRepository(ctx, raw, metrics.NewStorage("registry", "mongo"))
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported registry url scheme %q", s)
	}
}

func newJournal(ctx context.Context, raw string) (taskStore, upstream.ProgressStore, func(), error) {
	s, err := scheme(raw)
	if err != nil {
		return nil, nil, nil, err
	}
	switch s {
	case "memory":
		return memory.New(), upstream.NewMemoryProgress(), func() {}, nil
	case "redis", "rediss":
		opts, err := goredis.ParseURL(raw)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := goredis.NewClient(opts)
		journal := redisjournal.New(client, metrics.NewStorage("journal", "redis"))
		if err := journal.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		return journal, upstream.NewRedisProgress(client), func() { _ = journal.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported journal url scheme %q", s)
	}
}

func newAuditor(ctx context.Context, cfg appConfig, logger *zap.Logger) (*clickhouse.Repository, error) {
	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewStorage("audit", "clickhouse"), batcher.Config{
		Size:     cfg.AuditBatchSize,
		Interval: cfg.AuditFlushInterval,
	}, logger)
	if err != nil {
		return nil, err
	}
	// Stopped only by Close, which runs after the executor has drained.
	repo.Start(context.WithoutCancel(ctx))
	return repo, nil
}
