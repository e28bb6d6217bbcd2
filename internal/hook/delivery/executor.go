// Package delivery runs the per-task retry state machine that posts notifications to channel endpoints.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/bithook-backend/internal/clock"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 30 * time.Second
	persistTimeout        = 5 * time.Second
)

var (
	// ErrUnknownChannel marks a task whose channel is not configured.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrStatus marks a response outside the 2xx range.
	ErrStatus = errors.New("unexpected callback status")
)

// Config tunes the executor.
type Config struct {
	InitialBackoff time.Duration
	Jitter         float64
	RequestTimeout time.Duration
}

type endpoint struct {
	channel model.Channel
	limiter ratelimit.Limiter
}

// Executor delivers tasks concurrently; attempts within one task are strictly sequential.
type Executor struct {
	endpoints map[string]endpoint
	journal   Journal
	auditor   Auditor
	metrics   Metrics
	client    *http.Client
	logger    *zap.Logger
	cfg       Config
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
	rand      func() float64

	mu     sync.Mutex
	ctx    context.Context
	wg     sync.WaitGroup
	closed bool
}

// NewExecutor builds an Executor for the configured channels. auditor may be nil.
func NewExecutor(
	channels []model.Channel,
	journal Journal,
	auditor Auditor,
	metrics Metrics,
	client *http.Client,
	cfg Config,
	logger *zap.Logger,
) (*Executor, error) {
	if journal == nil {
		return nil, errors.New("delivery journal is required")
	}
	if metrics == nil {
		return nil, errors.New("delivery metrics is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialInterval
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	endpoints := make(map[string]endpoint, len(channels))
	for _, ch := range channels {
		if ch.MaxAttempts < 1 {
			ch.MaxAttempts = 1
		}
		limiter := ratelimit.NewUnlimited()
		if ch.RateLimit > 0 {
			limiter = ratelimit.New(ch.RateLimit)
		}
		endpoints[ch.Name] = endpoint{channel: ch, limiter: limiter}
	}

	clk := clock.Real{}
	return &Executor{
		endpoints: endpoints,
		journal:   journal,
		auditor:   auditor,
		metrics:   metrics,
		client:    client,
		logger:    logger.Named("delivery"),
		cfg:       cfg,
		sleep:     clk.Sleep,
		now:       clk.Now,
		ctx:       context.Background(),
	}, nil
}

// Start binds in-flight tasks to ctx; it is independent of any event stream lifetime.
func (e *Executor) Start(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()
}

// Recover re-dispatches tasks that were in flight when the process last stopped.
func (e *Executor) Recover(ctx context.Context) (int, error) {
	tasks, err := e.journal.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pending tasks: %w", err)
	}
	for _, task := range tasks {
		e.spawn(task, false)
	}
	if len(tasks) > 0 {
		e.logger.Info("recovered pending deliveries", zap.Int("tasks", len(tasks)))
	}
	return len(tasks), nil
}

// Dispatch starts every task in its own goroutine and returns immediately.
func (e *Executor) Dispatch(tasks []model.DeliveryTask) {
	for _, task := range tasks {
		e.spawn(task, true)
	}
}

// Wait blocks until every dispatched task has finished and refuses new work afterwards.
func (e *Executor) Wait() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Executor) spawn(task model.DeliveryTask, fresh bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.logger.Warn("executor closed, task not dispatched", zap.String("task", task.ID))
		return
	}
	ctx := e.ctx
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		e.metrics.ObserveInFlight(1)
		defer e.metrics.ObserveInFlight(-1)

		if fresh {
			e.persist(ctx, &task)
		}
		e.Run(ctx, task)
	}()
}

// Run drives one task to a terminal state, or until ctx ends, and returns the final task.
func (e *Executor) Run(ctx context.Context, task model.DeliveryTask) model.DeliveryTask {
	logger := e.logger.With(
		zap.String("task", task.ID),
		zap.String("txid", task.Transaction.Hash),
		zap.String("channel", task.Channel),
	)

	ep, ok := e.endpoints[task.Channel]
	if !ok {
		task.State = model.DeliveryDropped
		task.LastError = fmt.Sprintf("%s: %s", ErrUnknownChannel, task.Channel)
		e.finish(ctx, &task)
		logger.Error("delivery dropped, channel is not configured")
		return task
	}

	if task.Attempts >= ep.channel.MaxAttempts {
		task.State = model.DeliveryExpired
		e.finish(ctx, &task)
		logger.Warn("delivery expired", zap.Int("attempts", task.Attempts))
		return task
	}

	retries := ep.channel.MaxAttempts - task.Attempts - 1
	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			newCappedBackOff(e.cfg.InitialBackoff, ep.channel.MaxBackoff, e.cfg.Jitter, e.rand),
			uint64(retries),
		),
		ctx,
	)

	for {
		ep.limiter.Take()
		if ctx.Err() != nil {
			return task
		}
		task.State = model.DeliveryAttempting
		task.Attempts++

		started := time.Now()
		status, err := e.post(ctx, ep.channel, task)
		e.metrics.ObserveAttempt(task.Channel, err, started)
		task.LastStatus = status

		if err == nil {
			task.State = model.DeliveryDelivered
			task.LastError = ""
			e.finish(ctx, &task)
			logger.Debug("delivered", zap.Int("attempts", task.Attempts), zap.Int("status", status))
			return task
		}
		task.LastError = err.Error()

		next := policy.NextBackOff()
		if next == backoff.Stop {
			if ctx.Err() != nil {
				e.persist(ctx, &task)
				return task
			}
			task.State = model.DeliveryExpired
			e.finish(ctx, &task)
			logger.Warn("delivery expired", zap.Int("attempts", task.Attempts), zap.Error(err))
			return task
		}

		e.persist(ctx, &task)
		logger.Debug("delivery attempt failed, retrying",
			zap.Int("attempt", task.Attempts),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
		if err := e.sleep(ctx, next); err != nil {
			return task
		}
	}
}

func (e *Executor) post(ctx context.Context, ch model.Channel, task model.DeliveryTask) (int, error) {
	body, err := json.Marshal(task.Transaction)
	if err != nil {
		return 0, fmt.Errorf("encode transaction: %w", err)
	}
	target, err := callbackURL(ch.CallbackURL, ch.Secret)
	if err != nil {
		return 0, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post callback: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp.StatusCode, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func callbackURL(raw, secret string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse callback url: %w", err)
	}
	q := u.Query()
	q.Set("secret", secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (e *Executor) finish(ctx context.Context, task *model.DeliveryTask) {
	e.persist(ctx, task)
	e.metrics.ObserveOutcome(task.Channel, task.State)
}

// persist journals and audits the current state; failures are logged and never stop delivery.
func (e *Executor) persist(ctx context.Context, task *model.DeliveryTask) {
	task.UpdatedAt = e.now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := e.journal.Save(ctx, *task); err != nil {
		e.logger.Error("journal task failed", zap.String("task", task.ID), zap.Error(err))
	}
	if e.auditor == nil {
		return
	}
	if err := e.auditor.Record(ctx, model.NewDeliveryEvent(*task)); err != nil {
		e.logger.Error("audit task failed", zap.String("task", task.ID), zap.Error(err))
	}
}
