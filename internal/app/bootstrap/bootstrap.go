package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	contestengine "studio/contexts/creative-challenges/contest-engine"
	notifyadapter "studio/contexts/creative-challenges/contest-engine/adapters/notify"
	postgresadapter "studio/contexts/creative-challenges/contest-engine/adapters/postgres"
	redisadapter "studio/contexts/creative-challenges/contest-engine/adapters/redis"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/contexts/creative-challenges/contest-engine/ports"
	"studio/internal/platform/cache"
	"studio/internal/platform/config"
	"studio/internal/platform/db"
	"studio/internal/platform/httpserver"
	"studio/internal/platform/messaging"
	"studio/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *redis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres           *db.Postgres
	redis              *redis.Client
	bus                *messaging.Kafka
	metricsServer      *http.Server
	module             contestengine.Module
	pollInterval       time.Duration
	settlementInterval time.Duration
	logger             *slog.Logger
}

type runtime struct {
	cfg      config.Config
	postgres *db.Postgres
	redis    *redis.Client
	module   contestengine.Module
	metrics  *metrics.Metrics
	bus      *messaging.Kafka
}

func BuildAPI() (*APIApp, error) {
	rt, logger, err := build("api")
	if err != nil {
		return nil, err
	}
	server := httpserver.New(rt.module, httpserver.Options{
		Metrics:    rt.metrics,
		CronSecret: rt.cfg.CronSecret,
		Clock:      postgresadapter.SystemClock{},
	}, logger, normalizeAddr(rt.cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: rt.postgres,
		redis:    rt.redis,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	rt, logger, err := build("worker")
	if err != nil {
		return nil, err
	}
	var metricsServer *http.Server
	if rt.cfg.WorkerMetricsPort != "" {
		metricsServer = rt.metrics.Server(normalizeAddr(rt.cfg.WorkerMetricsPort))
	}
	return &WorkerApp{
		postgres:           rt.postgres,
		redis:              rt.redis,
		bus:                rt.bus,
		metricsServer:      metricsServer,
		module:             rt.module,
		pollInterval:       rt.cfg.WorkerPollInterval,
		settlementInterval: rt.cfg.SettlementInterval,
		logger:             logger,
	}, nil
}

func build(process string) (runtime, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return runtime{}, nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", process)
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return runtime{}, nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return runtime{}, nil, err
	}

	var (
		redisClient *redis.Client
		lock        ports.SettlementLock
	)
	if cfg.RedisAddr != "" {
		redisClient, err = cache.Connect(cfg.RedisAddr)
		if err != nil {
			_ = pg.Close()
			return runtime{}, nil, err
		}
		lock = redisadapter.NewSettlementLock(redisClient, logger)
	} else {
		logger.Warn("settlement lease disabled without REDIS_ADDR",
			"event", "bootstrap_settlement_lease_disabled",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		closeAll(pg, redisClient)
		return runtime{}, nil, err
	}

	processMetrics := metrics.New()
	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := contestengine.NewModule(contestengine.Dependencies{
		Contests:    repo,
		Submissions: repo,
		Votes:       repo,
		Settlement:  repo,
		Rewards:     repo,
		Outbox:      repo,
		Dedup:       repo,
		Credits:     repo,
		Lock:        lock,
		Publisher:   bus,
		Subscriber:  bus,
		Notifier:    notifyadapter.LogNotifier{Logger: logger},
		Metrics:     processMetrics,
		Clock:       postgresadapter.SystemClock{},
		IDGen:       postgresadapter.UUIDGenerator{},
		RateLimit: entities.RateLimitPolicy{
			Limit:  cfg.VoteIPRateLimit,
			Window: cfg.VoteIPRateWindow,
		},
		SettlementBatchSize:    cfg.SettlementBatchSize,
		SettlementConcurrency:  cfg.SettlementConcurrency,
		SettlementLockTTL:      cfg.SettlementLockTTL,
		DisablePrizeNotices:    !cfg.EnablePrizeNotifications,
		PrizeNoticeDedupWindow: 7 * 24 * time.Hour,
		Logger:                 logger,
	})
	return runtime{
		cfg:      cfg,
		postgres: pg,
		redis:    redisClient,
		module:   module,
		metrics:  processMetrics,
		bus:      bus,
	}, logger, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) Close() error {
	return closeAll(a.postgres, a.redis)
}

// Run drives the lifecycle advancer and outbox relay on every poll tick and
// settlement on its own, longer interval. A failing pass is logged and retried
// on the next tick.
func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.module.PrizeNotifications.Start(ctx); err != nil {
		return err
	}

	poll := time.NewTicker(w.pollInterval)
	defer poll.Stop()
	settle := time.NewTicker(w.settlementInterval)
	defer settle.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"settlement_interval", w.settlementInterval.String(),
	)

	if w.metricsServer != nil {
		go w.serveMetrics()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = w.metricsServer.Shutdown(shutdownCtx)
		}()
	}

	w.runPass(ctx, "settlement", w.module.Settlement.RunOnce)
	for {
		w.runPass(ctx, "lifecycle_advancer", w.module.Advancer.RunOnce)
		w.runPass(ctx, "outbox_relay", w.module.OutboxRelay.RunOnce)
		select {
		case <-ctx.Done():
			w.bus.Wait()
			return nil
		case <-settle.C:
			w.runPass(ctx, "settlement", w.module.Settlement.RunOnce)
		case <-poll.C:
		}
	}
}

func (w *WorkerApp) serveMetrics() {
	w.logger.Info("worker metrics listener started",
		"event", "bootstrap_worker_metrics_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"addr", w.metricsServer.Addr,
	)
	if err := w.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.logger.Error("worker metrics listener failed",
			"event", "bootstrap_worker_metrics_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
	}
}

func (w *WorkerApp) runPass(ctx context.Context, name string, pass func(context.Context) error) {
	if err := pass(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("worker pass failed",
			"event", "bootstrap_worker_pass_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"pass", name,
			"error", err.Error(),
		)
	}
}

func (w *WorkerApp) Close() error {
	return closeAll(w.postgres, w.redis)
}

func closeAll(pg *db.Postgres, redisClient *redis.Client) error {
	var errs []error
	if redisClient != nil {
		errs = append(errs, redisClient.Close())
	}
	if pg != nil {
		errs = append(errs, pg.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
