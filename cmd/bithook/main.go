package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GorillaPool/go-junglebus"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goodnatureofminers/bithook-backend/internal/config"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/bitcoin"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/delivery"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/filter"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/matcher"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/service"
	"github.com/goodnatureofminers/bithook-backend/internal/hook/upstream"
	"github.com/goodnatureofminers/bithook-backend/internal/metrics"
	"github.com/goodnatureofminers/bithook-backend/internal/transport/rest"
)

const shutdownTimeout = 10 * time.Second

type appConfig struct {
	APIAddr        string `long:"api-addr" env:"BITHOOK_API_ADDR" description:"REST API listen address" default:":8084"`
	APIAllowOrigin string `long:"api-allow-origin" env:"BITHOOK_API_ALLOW_ORIGIN" description:"allowed CORS origin" default:"*"`
	MetricsAddr    string `long:"metrics-addr" env:"BITHOOK_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogJSON        bool   `long:"log-json" env:"BITHOOK_LOG_JSON" description:"emit production JSON logs"`
	ChannelsFile   string `long:"channels-file" env:"BITHOOK_CHANNELS_FILE" description:"channel definitions (yaml or json)" required:"true"`

	RegistryURL        string        `long:"registry-url" env:"BITHOOK_REGISTRY_URL" description:"subscription registry, mongodb://... or memory://" default:"memory://"`
	JournalURL         string        `long:"journal-url" env:"BITHOOK_JOURNAL_URL" description:"delivery journal and stream progress, redis://... or memory://" default:"memory://"`
	ClickhouseDSN      string        `long:"clickhouse-dsn" env:"BITHOOK_CLICKHOUSE_DSN" description:"ClickHouse DSN for the delivery audit trail, disabled when empty"`
	AuditBatchSize     int           `long:"audit-batch-size" env:"BITHOOK_AUDIT_BATCH_SIZE" description:"audit events per insert" default:"1000"`
	AuditFlushInterval time.Duration `long:"audit-flush-interval" env:"BITHOOK_AUDIT_FLUSH_INTERVAL" description:"max delay before audit events are flushed" default:"1s"`

	JunglebusURL  string   `long:"junglebus-url" env:"BITHOOK_JUNGLEBUS_URL" description:"event stream server" default:"https://junglebus.gorillapool.io"`
	FilterURL     string   `long:"filter-url" env:"BITHOOK_FILTER_URL" description:"endpoint that registers an output filter and returns its subscription id" required:"true"`
	InitHeight    uint64   `long:"init-height" env:"BITHOOK_INIT_HEIGHT" description:"block height to start from on the very first run"`
	SkipMempool   bool     `long:"skip-mempool" env:"BITHOOK_SKIP_MEMPOOL" description:"ignore mempool transactions"`
	SkipBlocks    bool     `long:"skip-blocks" env:"BITHOOK_SKIP_BLOCKS" description:"ignore mined transactions"`
	LiteMode      bool     `long:"lite-mode" env:"BITHOOK_LITE_MODE" description:"receive transaction pointers instead of raw bytes"`
	StreamQueue   uint32   `long:"stream-queue" env:"BITHOOK_STREAM_QUEUE" description:"event stream client queue size" default:"100000"`
	Decoder       string   `long:"decoder" env:"BITHOOK_DECODER" description:"transaction decoder" choice:"sdk" choice:"wire" default:"sdk"`
	Network       string   `long:"network" env:"BITHOOK_NETWORK" description:"address network" default:"mainnet"`
	Strategies    []string `long:"descriptor-strategy" env:"BITHOOK_DESCRIPTOR_STRATEGIES" env-delim:"," description:"output descriptor strategies (address, scripthash, outpoint, script)" default:"address"`
	FetchParallel int      `long:"fetch-parallel" env:"BITHOOK_FETCH_PARALLEL" description:"max concurrent oversized transaction fetches" default:"16"`
	BlockWorkers  int      `long:"block-workers" env:"BITHOOK_BLOCK_WORKERS" description:"workers matching the transactions of one block" default:"8"`

	FilterReconcileInterval time.Duration `long:"filter-reconcile-interval" env:"BITHOOK_FILTER_RECONCILE_INTERVAL" description:"periodic filter reconciliation" default:"1m"`
	DeliveryInitialBackoff  time.Duration `long:"delivery-initial-backoff" env:"BITHOOK_DELIVERY_INITIAL_BACKOFF" description:"first retry delay" default:"1s"`
	DeliveryJitter          float64       `long:"delivery-jitter" env:"BITHOOK_DELIVERY_JITTER" description:"retry delay jitter factor" default:"0.2"`
	DeliveryTimeout         time.Duration `long:"delivery-timeout" env:"BITHOOK_DELIVERY_TIMEOUT" description:"callback request timeout" default:"30s"`
	HTTPTimeout             time.Duration `long:"http-timeout" env:"BITHOOK_HTTP_TIMEOUT" description:"timeout of upstream http requests" default:"30s"`
}

func main() {
	_ = godotenv.Load()
	cfg := appConfig{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("bithook failed", zap.Error(err))
	}
}

func newLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, cfg appConfig, logger *zap.Logger) error {
	channels, err := config.LoadChannels(cfg.ChannelsFile)
	if err != nil {
		return fmt.Errorf("load channels: %w", err)
	}

	startMetricsServer(ctx, cfg.MetricsAddr, cfg.APIAllowOrigin, logger)

	reg, closeRegistry, err := newRegistry(ctx, cfg.RegistryURL)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}
	defer closeRegistry()

	journal, progress, closeJournal, err := newJournal(ctx, cfg.JournalURL)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}
	defer closeJournal()

	var auditor delivery.Auditor
	if cfg.ClickhouseDSN != "" {
		repo, err := newAuditor(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("init audit trail: %w", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("close audit trail", zap.Error(err))
			}
		}()
		auditor = repo
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	upstreamMetrics := metrics.NewUpstream()

	jb, err := junglebus.New(junglebus.WithHTTP(cfg.JunglebusURL))
	if err != nil {
		return fmt.Errorf("init junglebus client: %w", err)
	}
	stream, err := upstream.NewStream(jb, progress, upstreamMetrics, upstream.StreamConfig{
		BaseURL:     cfg.JunglebusURL,
		InitHeight:  cfg.InitHeight,
		FromMempool: !cfg.SkipMempool,
		FromBlocks:  !cfg.SkipBlocks,
		LiteMode:    cfg.LiteMode,
		QueueSize:   cfg.StreamQueue,
	}, logger)
	if err != nil {
		return fmt.Errorf("init stream: %w", err)
	}
	defer stream.Close()

	publisher, err := upstream.NewFilterPublisher(cfg.FilterURL, httpClient, upstreamMetrics)
	if err != nil {
		return fmt.Errorf("init filter publisher: %w", err)
	}
	synchronizer, err := filter.NewSynchronizer(
		reg,
		upstream.NewSource(publisher, stream),
		metrics.NewFilter(),
		cfg.FilterReconcileInterval,
		logger,
	)
	if err != nil {
		return fmt.Errorf("init filter synchronizer: %w", err)
	}

	executor, err := delivery.NewExecutor(channels, journal, auditor, metrics.NewDelivery(), nil, delivery.Config{
		InitialBackoff: cfg.DeliveryInitialBackoff,
		Jitter:         cfg.DeliveryJitter,
		RequestTimeout: cfg.DeliveryTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("init delivery executor: %w", err)
	}

	decoder, err := newDecoder(cfg.Decoder)
	if err != nil {
		return err
	}
	strategies, err := bitcoin.NewStrategySet(cfg.Strategies, cfg.Network)
	if err != nil {
		return fmt.Errorf("init descriptor strategies: %w", err)
	}
	m, err := matcher.NewMatcher(
		upstream.NewFetcher(httpClient, cfg.FetchParallel),
		decoder,
		strategies,
		reg,
		metrics.NewMatcher(),
		cfg.BlockWorkers,
		logger,
	)
	if err != nil {
		return fmt.Errorf("init matcher: %w", err)
	}
	pipeline, err := matcher.NewPipeline(m, executor, logger)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	svc, err := service.New(reg, synchronizer, journal, channels, logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}
	api, err := rest.NewServer(svc, rest.Config{AllowOrigin: cfg.APIAllowOrigin}, logger)
	if err != nil {
		return fmt.Errorf("init api: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	executor.Start(gctx)
	if _, err := executor.Recover(gctx); err != nil {
		logger.Error("recover pending deliveries", zap.Error(err))
	}

	g.Go(func() error {
		return ignoreCanceled(synchronizer.Run(gctx))
	})
	g.Go(func() error {
		return ignoreCanceled(pipeline.Run(gctx, stream.Mempool(), stream.Blocks()))
	})
	g.Go(func() error {
		return api.Listen(cfg.APIAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown api server", zap.Error(err))
		}
		return nil
	})

	logger.Info("bithook started",
		zap.Int("channels", len(channels)),
		zap.String("api", cfg.APIAddr),
		zap.Bool("mempool", !cfg.SkipMempool),
		zap.Bool("blocks", !cfg.SkipBlocks),
	)

	err = g.Wait()
	logger.Info("waiting for in-flight deliveries")
	executor.Wait()
	return err
}

func newDecoder(name string) (matcher.Decoder, error) {
	switch name {
	case "", "sdk":
		return bitcoin.NewSDKDecoder(), nil
	case "wire":
		return bitcoin.NewWireDecoder(), nil
	default:
		return nil, fmt.Errorf("unknown decoder %q", name)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
