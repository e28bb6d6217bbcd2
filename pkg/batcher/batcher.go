// Package batcher groups items into size- or time-bounded batches for a flush callback.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const finalFlushTimeout = 5 * time.Second

// ErrStopped is returned by Add once Stop has been called or the flushing loop has exited.
var ErrStopped = errors.New("batcher stopped")

// Config bounds a batch. RPS limits flushes per second; zero means unlimited.
type Config struct {
	Size     int
	Interval time.Duration
	RPS      int
}

// Batcher buffers items and hands them to the flush callback in order.
type Batcher[T any] struct {
	flush   func(context.Context, []T) error
	items   chan T
	size    int
	every   time.Duration
	limiter ratelimit.Limiter
	logger  *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once

	// adding is read-held by Add; run takes the write lock after closing done so every accepted item is drained.
	adding sync.RWMutex
	done   chan struct{}
}

// New constructs a Batcher; non-positive sizes and intervals fall back to 1 item and 1 second.
func New[T any](logger *zap.Logger, flush func(context.Context, []T) error, cfg Config) *Batcher[T] {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		limiter = ratelimit.New(cfg.RPS)
	}
	return &Batcher[T]{
		logger:  logger,
		flush:   flush,
		items:   make(chan T, cfg.Size*2),
		size:    cfg.Size,
		every:   cfg.Interval,
		limiter: limiter,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start runs the flushing loop until ctx ends or Stop is called.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop flushes whatever is buffered and waits for the loop to exit. Safe to call twice.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	b.wg.Wait()
}

// Add queues an item, blocking while the buffer is full.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	b.adding.RLock()
	defer b.adding.RUnlock()

	select {
	case <-b.stop:
		return ErrStopped
	case <-b.done:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case <-b.done:
		return ErrStopped
	case b.items <- item:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.every)
	defer ticker.Stop()

	buf := make([]T, 0, b.size)
	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}
		b.limiter.Take()
		if err := b.flush(ctx, buf); err != nil {
			b.logger.Error("batch not flushed", zap.Int("size", len(buf)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(buf)))
		}
		buf = buf[:0]
	}
	// drain empties the channel so items accepted before shutdown are not lost.
	drain := func() {
		close(b.done)
		b.adding.Lock()
		defer b.adding.Unlock()

		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
		defer cancel()
		for {
			select {
			case item := <-b.items:
				buf = append(buf, item)
				if len(buf) >= b.size {
					flush(flushCtx)
				}
			default:
				flush(flushCtx)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return
		case <-b.stop:
			drain()
			return
		case item := <-b.items:
			buf = append(buf, item)
			if len(buf) >= b.size {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}
