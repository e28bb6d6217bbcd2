package matcher

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline consumes the mempool and block streams, each in arrival order, and hands matches to the dispatcher.
type Pipeline struct {
	matcher    *Matcher
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewPipeline binds a matcher to a dispatcher.
func NewPipeline(m *Matcher, dispatcher Dispatcher, logger *zap.Logger) (*Pipeline, error) {
	if m == nil {
		return nil, errors.New("pipeline matcher is required")
	}
	if dispatcher == nil {
		return nil, errors.New("pipeline dispatcher is required")
	}
	return &Pipeline{matcher: m, dispatcher: dispatcher, logger: logger.Named("pipeline")}, nil
}

// Run drains both streams until ctx ends or both channels are closed.
func (p *Pipeline) Run(ctx context.Context, mempool <-chan model.TxEvent, blocks <-chan model.BlockEvent) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-mempool:
				if !ok {
					return nil
				}
				p.handleTx(ctx, ev)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case block, ok := <-blocks:
				if !ok {
					return nil
				}
				p.handleBlock(ctx, block)
			}
		}
	})
	return g.Wait()
}

func (p *Pipeline) handleTx(ctx context.Context, ev model.TxEvent) {
	tasks, err := p.matcher.Match(ctx, ev)
	if err != nil {
		p.logger.Warn("transaction event dropped", zap.String("txid", ev.TxID), zap.Error(err))
		return
	}
	if len(tasks) > 0 {
		p.dispatcher.Dispatch(tasks)
	}
}

func (p *Pipeline) handleBlock(ctx context.Context, block model.BlockEvent) {
	tasks := p.matcher.MatchBlock(ctx, block)
	p.logger.Debug("block matched",
		zap.Uint64("height", block.Height),
		zap.Int("transactions", len(block.Transactions)),
		zap.Int("tasks", len(tasks)),
	)
	if len(tasks) > 0 {
		p.dispatcher.Dispatch(tasks)
	}
}
