// Package filter keeps the upstream match filter in step with the subscription registry.
package filter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/registry"
	"go.uber.org/zap"
)

const defaultReconcileInterval = time.Minute

// Synchronizer republishes the distinct descriptor set whenever the registry changes.
// Runs are serialized and overlapping triggers collapse into one.
type Synchronizer struct {
	registry Registry
	source   Source
	metrics  Metrics
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	trigger chan struct{}
	mu      sync.Mutex
	running bool
	active  atomic.Pointer[model.ActiveFilter]
}

// NewSynchronizer builds a Synchronizer; interval <= 0 uses the default reconcile period.
func NewSynchronizer(
	reg Registry,
	source Source,
	metrics Metrics,
	interval time.Duration,
	logger *zap.Logger,
) (*Synchronizer, error) {
	if reg == nil {
		return nil, errors.New("filter registry is required")
	}
	if source == nil {
		return nil, errors.New("filter source is required")
	}
	if metrics == nil {
		return nil, errors.New("filter metrics is required")
	}
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	return &Synchronizer{
		registry: reg,
		source:   source,
		metrics:  metrics,
		logger:   logger.Named("filter"),
		interval: interval,
		now:      time.Now,
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Trigger requests a resynchronization without blocking.
func (s *Synchronizer) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Active returns the current filter snapshot, or nil while nothing is monitored.
func (s *Synchronizer) Active() *model.ActiveFilter {
	return s.active.Load()
}

// Run synchronizes once, then serves triggers and the periodic sweep until ctx ends.
func (s *Synchronizer) Run(ctx context.Context) error {
	defer s.source.Stop()

	s.syncAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.trigger:
			s.syncAndLog(ctx)
		case <-ticker.C:
			s.syncAndLog(ctx)
		}
	}
}

func (s *Synchronizer) syncAndLog(ctx context.Context) {
	if err := s.Sync(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("filter synchronization failed, keeping previous filter", zap.Error(err))
	}
}

// Sync reads the registry and publishes its descriptor set, or pauses the source when it is empty.
func (s *Synchronizer) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	subs, err := s.registry.ListAll(ctx)
	if err != nil {
		err = fmt.Errorf("list subscriptions: %w", err)
		s.metrics.ObserveSync(err, 0, started)
		return err
	}

	descriptors := registry.Distinct(subs)
	if len(descriptors) == 0 {
		s.source.Stop()
		s.running = false
		s.active.Store(nil)
		s.metrics.ObservePause()
		s.logger.Info("registry empty, event source paused")
		return nil
	}

	digest := Digest(descriptors)
	if current := s.active.Load(); current != nil && current.Digest == digest && s.running {
		s.metrics.ObserveSkip()
		return nil
	}

	handle, err := s.source.PublishFilter(ctx, descriptors)
	if err != nil {
		err = fmt.Errorf("publish filter: %w", err)
		s.metrics.ObserveSync(err, len(descriptors), started)
		return err
	}

	s.active.Store(&model.ActiveFilter{
		Handle:      handle,
		Descriptors: descriptors,
		Count:       len(descriptors),
		Digest:      digest,
		PublishedAt: s.now().UTC(),
	})

	if err = s.source.Start(ctx, handle); err != nil {
		s.running = false
		err = fmt.Errorf("start event source with filter %s: %w", handle, err)
		s.metrics.ObserveSync(err, len(descriptors), started)
		return err
	}
	s.running = true
	s.metrics.ObserveSync(nil, len(descriptors), started)
	s.logger.Info("filter published",
		zap.String("handle", handle),
		zap.Int("descriptors", len(descriptors)),
	)
	return nil
}

// Digest fingerprints a descriptor set independently of its order.
func Digest(descriptors []string) string {
	sorted := append([]string(nil), descriptors...)
	sort.Strings(sorted)
	return chainhash.HashH([]byte(strings.Join(sorted, "\n"))).String()
}
