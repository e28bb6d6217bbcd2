package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GorillaPool/go-junglebus"
	"github.com/GorillaPool/go-junglebus/models"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"go.uber.org/zap"
)

const (
	statusBlockDone = 200
	statusComplete  = 999

	defaultQueueSize   = 100000
	defaultChannelSize = 1024
	defaultProgressKey = "bithook"
)

// StreamConfig selects which parts of the subscription are forwarded.
type StreamConfig struct {
	BaseURL     string
	InitHeight  uint64
	FromMempool bool
	FromBlocks  bool
	LiteMode    bool
	QueueSize   uint32
	ProgressKey string
}

type subscribeFunc func(ctx context.Context, topic string, fromBlock uint64, handler junglebus.EventHandler) (func(), error)

// Stream subscribes to a filter topic and republishes its events on the mempool and block channels.
// Only one subscription is active at a time; Start with a new handle replaces it.
type Stream struct {
	subscribe subscribeFunc
	progress  ProgressStore
	metrics   Metrics
	cfg       StreamConfig
	logger    *zap.Logger

	mempool chan model.TxEvent
	blocks  chan model.BlockEvent

	mu          sync.Mutex
	topic       string
	unsubscribe func()
	cancel      context.CancelFunc
	closed      bool

	sendMu  sync.RWMutex
	drained bool
}

// NewStream subscribes through a JungleBus client.
func NewStream(client *junglebus.Client, progress ProgressStore, metrics Metrics, cfg StreamConfig, logger *zap.Logger) (*Stream, error) {
	if client == nil {
		return nil, errors.New("junglebus client is required")
	}
	queueSize := cfg.QueueSize
	if queueSize == 0 {
		queueSize = defaultQueueSize
	}
	lite := cfg.LiteMode
	subscribe := func(ctx context.Context, topic string, fromBlock uint64, handler junglebus.EventHandler) (func(), error) {
		sub, err := client.SubscribeWithQueue(ctx, topic, fromBlock, 0, handler, &junglebus.SubscribeOptions{
			QueueSize: queueSize,
			LiteMode:  lite,
		})
		if err != nil {
			return nil, err
		}
		return func() { sub.Unsubscribe() }, nil
	}
	return newStream(subscribe, progress, metrics, cfg, logger)
}

func newStream(subscribe subscribeFunc, progress ProgressStore, metrics Metrics, cfg StreamConfig, logger *zap.Logger) (*Stream, error) {
	if progress == nil {
		return nil, errors.New("stream progress store is required")
	}
	if metrics == nil {
		return nil, errors.New("stream metrics is required")
	}
	if cfg.ProgressKey == "" {
		cfg.ProgressKey = defaultProgressKey
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Stream{
		subscribe: subscribe,
		progress:  progress,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger.Named("stream"),
		mempool:   make(chan model.TxEvent, defaultChannelSize),
		blocks:    make(chan model.BlockEvent, defaultChannelSize),
	}, nil
}

// Mempool delivers unconfirmed transactions in arrival order.
func (s *Stream) Mempool() <-chan model.TxEvent { return s.mempool }

// Blocks delivers one event per completed block in arrival order.
func (s *Stream) Blocks() <-chan model.BlockEvent { return s.blocks }

// Start subscribes to handle, resuming from the stored progress or the configured initial height.
// Starting the handle that is already active is a no-op.
func (s *Stream) Start(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("stream closed")
	}
	if s.unsubscribe != nil && s.topic == handle {
		return nil
	}

	// The previous subscription keeps running until the new one is live.
	from, ok, err := s.progress.Load(ctx, s.cfg.ProgressKey)
	if err != nil {
		return fmt.Errorf("load stream progress: %w", err)
	}
	if !ok || from < s.cfg.InitHeight {
		from = s.cfg.InitHeight
	}

	subCtx, cancel := context.WithCancel(ctx)
	unsubscribe, err := s.subscribe(subCtx, handle, from, s.handler(subCtx, &blockBuffer{byHeight: make(map[uint64][]model.TxEvent)}))
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to %s: %w", handle, err)
	}
	s.stopLocked()
	s.topic = handle
	s.unsubscribe = unsubscribe
	s.cancel = cancel
	s.logger.Info("subscribed", zap.String("topic", handle), zap.Uint64("from_block", from))
	return nil
}

// Topic returns the handle of the active subscription, or "" when none is active.
func (s *Stream) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Stop ends the active subscription, if any.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Close stops the subscription and closes both output channels.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopLocked()
	s.closed = true

	s.sendMu.Lock()
	s.drained = true
	close(s.mempool)
	close(s.blocks)
	s.sendMu.Unlock()
}

func (s *Stream) stopLocked() {
	if s.unsubscribe == nil {
		return
	}
	s.cancel()
	s.unsubscribe()
	s.logger.Info("unsubscribed", zap.String("topic", s.topic))
	s.unsubscribe = nil
	s.cancel = nil
	s.topic = ""
}

// blockBuffer collects confirmed transactions of one subscription until their block completes.
type blockBuffer struct {
	mu       sync.Mutex
	byHeight map[uint64][]model.TxEvent
}

func (b *blockBuffer) add(height uint64, ev model.TxEvent) {
	b.mu.Lock()
	b.byHeight[height] = append(b.byHeight[height], ev)
	b.mu.Unlock()
}

func (b *blockBuffer) take(height uint64) []model.TxEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	txs := b.byHeight[height]
	delete(b.byHeight, height)
	return txs
}

func (s *Stream) handler(ctx context.Context, pending *blockBuffer) junglebus.EventHandler {
	return junglebus.EventHandler{
		OnTransaction: func(txn *models.TransactionResponse) {
			if !s.cfg.FromBlocks {
				return
			}
			ev := s.txEvent(model.SourceBlock, txn)
			ev.Block = &model.BlockRef{
				Height: uint64(txn.BlockHeight),
				Hash:   txn.BlockHash,
				Index:  uint64(txn.BlockIndex),
			}
			pending.add(ev.Block.Height, ev)
		},
		OnMempool: func(txn *models.TransactionResponse) {
			if !s.cfg.FromMempool {
				return
			}
			s.metrics.ObserveEvent(model.SourceMempool)
			s.sendTx(ctx, s.txEvent(model.SourceMempool, txn))
		},
		OnStatus: func(status *models.ControlResponse) {
			switch status.StatusCode {
			case statusBlockDone:
				s.completeBlock(ctx, uint64(status.Block), pending.take(uint64(status.Block)))
			case statusComplete:
				s.logger.Info("subscription caught up", zap.String("message", status.Message))
			}
		},
		OnError: func(err error) {
			s.metrics.ObserveStreamError()
			s.logger.Error("subscription error", zap.Error(err))
		},
	}
}

func (s *Stream) completeBlock(ctx context.Context, height uint64, txs []model.TxEvent) {
	if len(txs) > 0 {
		block := model.BlockEvent{Height: height, Hash: txs[0].Block.Hash, Transactions: txs}
		s.metrics.ObserveEvent(model.SourceBlock)
		if !s.sendBlock(ctx, block) {
			return
		}
	}
	if err := s.progress.Save(ctx, s.cfg.ProgressKey, height+1); err != nil {
		s.logger.Warn("stream progress not saved", zap.Uint64("height", height), zap.Error(err))
	}
}

// sendTx and sendBlock give up when the subscription ends or the channels are closed.
func (s *Stream) sendTx(ctx context.Context, ev model.TxEvent) bool {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.drained {
		return false
	}
	select {
	case s.mempool <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Stream) sendBlock(ctx context.Context, block model.BlockEvent) bool {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.drained {
		return false
	}
	select {
	case s.blocks <- block:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Stream) txEvent(source model.EventSource, txn *models.TransactionResponse) model.TxEvent {
	ev := model.TxEvent{Source: source, TxID: txn.Id, Raw: txn.Transaction}
	if len(ev.Raw) == 0 && s.cfg.BaseURL != "" {
		ev.RawURL = fmt.Sprintf("%s/v1/transaction/get/%s/bin", s.cfg.BaseURL, txn.Id)
	}
	return ev
}
