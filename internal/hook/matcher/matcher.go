// Package matcher resolves observed transactions to the channels that must be notified.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/goodnatureofminers/bithook-backend/pkg/workerpool"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultBlockWorkers = 8

var (
	// ErrFetch marks an event whose payload could not be retrieved.
	ErrFetch = errors.New("fetch transaction")
	// ErrDecode marks an event whose payload is not a valid transaction.
	ErrDecode = errors.New("decode transaction")
)

// Matcher turns transaction events into delivery tasks.
type Matcher struct {
	fetcher      Fetcher
	decoder      Decoder
	strategies   DescriptorStrategy
	registry     Registry
	metrics      Metrics
	logger       *zap.Logger
	blockWorkers int
	now          func() time.Time
	newID        func() string
}

// NewMatcher wires a Matcher; blockWorkers <= 0 uses the default.
func NewMatcher(
	fetcher Fetcher,
	decoder Decoder,
	strategies DescriptorStrategy,
	reg Registry,
	metrics Metrics,
	blockWorkers int,
	logger *zap.Logger,
) (*Matcher, error) {
	switch {
	case fetcher == nil:
		return nil, errors.New("matcher fetcher is required")
	case decoder == nil:
		return nil, errors.New("matcher decoder is required")
	case strategies == nil:
		return nil, errors.New("matcher descriptor strategy is required")
	case reg == nil:
		return nil, errors.New("matcher registry is required")
	case metrics == nil:
		return nil, errors.New("matcher metrics is required")
	}
	if blockWorkers <= 0 {
		blockWorkers = defaultBlockWorkers
	}
	return &Matcher{
		fetcher:      fetcher,
		decoder:      decoder,
		strategies:   strategies,
		registry:     reg,
		metrics:      metrics,
		logger:       logger.Named("matcher"),
		blockWorkers: blockWorkers,
		now:          time.Now,
		newID:        uuid.NewString,
	}, nil
}

// Match resolves one event to at most one task per channel.
func (m *Matcher) Match(ctx context.Context, ev model.TxEvent) ([]model.DeliveryTask, error) {
	started := time.Now()
	tasks, err := m.match(ctx, ev)
	m.metrics.ObserveMatch(ev.Source, err, len(tasks), started)
	return tasks, err
}

func (m *Matcher) match(ctx context.Context, ev model.TxEvent) ([]model.DeliveryTask, error) {
	raw := ev.Raw
	if len(raw) == 0 {
		if ev.RawURL == "" {
			return nil, fmt.Errorf("%w %s: no payload and no retrieval url", ErrFetch, ev.TxID)
		}
		started := time.Now()
		fetched, err := m.fetcher.Fetch(ctx, ev.RawURL)
		m.metrics.ObserveFetch(err, started)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrFetch, ev.TxID, err)
		}
		raw = fetched
	}

	tx, err := m.decoder.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, ev.TxID, err)
	}
	tx.Source = ev.Source
	tx.Block = ev.Block

	now := m.now().UTC()
	seen := make(map[string]struct{})
	var tasks []model.DeliveryTask
	for _, descriptor := range m.strategies.Descriptors(tx) {
		subs, err := m.registry.FindByDescriptor(ctx, descriptor)
		if err != nil {
			m.metrics.ObserveLookupError()
			m.logger.Warn("registry lookup failed, skipping descriptor",
				zap.String("txid", tx.Hash),
				zap.String("descriptor", descriptor),
				zap.Error(err),
			)
			continue
		}
		for _, sub := range subs {
			if _, ok := seen[sub.Channel]; ok {
				continue
			}
			seen[sub.Channel] = struct{}{}
			tasks = append(tasks, model.DeliveryTask{
				ID:          m.newID(),
				Channel:     sub.Channel,
				Descriptor:  sub.Descriptor,
				Transaction: tx,
				State:       model.DeliveryPending,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	return tasks, nil
}

// MatchBlock matches every transaction of a block independently.
// A failure on one transaction is logged and does not affect the others.
func (m *Matcher) MatchBlock(ctx context.Context, block model.BlockEvent) []model.DeliveryTask {
	var (
		mu    sync.Mutex
		tasks []model.DeliveryTask
	)
	err := workerpool.Each(ctx, m.blockWorkers, block.Transactions, func(ctx context.Context, ev model.TxEvent) error {
		matched, err := m.Match(ctx, ev)
		if err != nil {
			return err
		}
		mu.Lock()
		tasks = append(tasks, matched...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		m.logger.Warn("some block transactions were dropped",
			zap.Uint64("height", block.Height),
			zap.Error(err),
		)
	}
	return tasks
}
