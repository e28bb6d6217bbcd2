// Package service implements the administrative operations behind the REST API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
	"go.uber.org/zap"
)

const (
	DefaultExpiredLimit = 100
	MaxExpiredLimit     = 1000
)

// Service mutates the registry and keeps the upstream filter in step with it.
type Service struct {
	registry Registry
	sync     Synchronizer
	expired  ExpiredLister
	channels map[string]struct{}
	logger   *zap.Logger
}

// New builds a Service; channels is only used to warn about subscriptions nobody can receive.
func New(reg Registry, sync Synchronizer, expired ExpiredLister, channels []model.Channel, logger *zap.Logger) (*Service, error) {
	if reg == nil {
		return nil, errors.New("service registry is required")
	}
	if sync == nil {
		return nil, errors.New("service synchronizer is required")
	}
	if expired == nil {
		return nil, errors.New("service expired lister is required")
	}
	known := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		known[ch.Name] = struct{}{}
	}
	return &Service{
		registry: reg,
		sync:     sync,
		expired:  expired,
		channels: known,
		logger:   logger.Named("service"),
	}, nil
}

// AddSubscriptions registers every descriptor for channel and reports each outcome.
// The filter is resynchronized when at least one insert succeeded.
func (s *Service) AddSubscriptions(ctx context.Context, descriptors []string, channel string) ([]registry.InsertResult, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, fmt.Errorf("%w: channel field required", registry.ErrInvalid)
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%w: outputs field required", registry.ErrInvalid)
	}
	if _, ok := s.channels[channel]; !ok {
		s.logger.Warn("subscription for unconfigured channel, deliveries will be dropped", zap.String("channel", channel))
	}

	results := s.registry.InsertMany(ctx, descriptors, channel)
	inserted := 0
	for _, res := range results {
		if res.Err == nil {
			inserted++
		}
	}
	if inserted > 0 {
		s.sync.Trigger()
	}
	s.logger.Debug("subscriptions added",
		zap.String("channel", channel),
		zap.Int("requested", len(descriptors)),
		zap.Int("inserted", inserted),
	)
	return results, nil
}

// Remove deletes a subscription by id and resynchronizes the filter when something was removed.
func (s *Service) Remove(ctx context.Context, id string) (int64, error) {
	removed, err := s.registry.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete subscription %s: %w", id, err)
	}
	if removed > 0 {
		s.sync.Trigger()
	}
	return removed, nil
}

// List returns every registered subscription.
func (s *Service) List(ctx context.Context) ([]model.Subscription, error) {
	subs, err := s.registry.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// Expired lists tasks whose attempts ran out, newest first.
func (s *Service) Expired(ctx context.Context, limit int) ([]model.DeliveryTask, error) {
	switch {
	case limit <= 0:
		limit = DefaultExpiredLimit
	case limit > MaxExpiredLimit:
		limit = MaxExpiredLimit
	}
	tasks, err := s.expired.Expired(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired tasks: %w", err)
	}
	return tasks, nil
}

// ActiveFilter returns the filter currently used upstream, or nil while paused.
func (s *Service) ActiveFilter() *model.ActiveFilter {
	return s.sync.Active()
}
