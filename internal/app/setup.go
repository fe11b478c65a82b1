package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"arbscan/internal/adapters"
	"arbscan/internal/alerts"
	"arbscan/internal/arbitrage"
	"arbscan/internal/matching"
	"arbscan/internal/queue"
	"arbscan/internal/scanner"
	"arbscan/internal/scheduler"
	"arbscan/pkg/cache"
	"arbscan/pkg/config"
	"arbscan/pkg/healthprobe"
	"arbscan/pkg/httpserver"
	"arbscan/pkg/ratelimit"
)

// New creates a new application instance. Redis must be reachable: the job
// queue and the alert cooldown markers live there.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	store, err := setupCache(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	orchestrator := setupOrchestrator(cfg, logger, store)

	jobQueue := queue.New(store.Client(), logger)
	worker := setupWorker(cfg, logger, jobQueue, orchestrator)
	sched := scheduler.New(jobQueue, scheduler.Config{
		ScanInterval:  cfg.ScanInterval,
		StatsInterval: cfg.StatsInterval,
		FetchLimit:    cfg.DefaultLimit,
		Cache:         store,
		Logger:        logger,
	})

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Cache:         store,
		Queue:         jobQueue,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		store:         store,
		redisClient:   store.Client(),
		orchestrator:  orchestrator,
		jobQueue:      jobQueue,
		worker:        worker,
		scheduler:     sched,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*cache.RedisCache, error) {
	return cache.NewRedisCache(ctx, &cache.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		Logger:   logger,
	})
}

// setupOrchestrator builds the scan pipeline: adapters behind the rate
// limiter, matcher, calculator and alert dispatcher.
func setupOrchestrator(cfg *config.Config, logger *zap.Logger, store cache.Cache) *scanner.Orchestrator {
	limiter := ratelimit.New(ratelimit.DefaultLimits(), logger)
	registry := adapters.NewRegistry(cfg, limiter, logger)

	matcher := matching.New(matching.Config{
		Threshold:          cfg.MatchThreshold,
		MaxDateDiffDays:    cfg.MaxDateDiffDays,
		MinMatchCharLength: cfg.MinMatchCharLength,
		Logger:             logger,
	})

	calculator := arbitrage.New(arbitrage.Config{
		FeeRates:     cfg.FeeRates(),
		MinROI:       cfg.MinROI,
		MinLiquidity: cfg.MinLiquidity,
		Logger:       logger,
	})

	dispatcher := alerts.New(alerts.Config{
		Enabled:            cfg.AlertsEnabled,
		WebhookURL:         cfg.WebhookURL,
		MinProfitPercent:   cfg.MinProfitPercent,
		MinProfitAmount:    cfg.MinProfitAmount,
		Cooldown:           cfg.AlertCooldown,
		MaxAlertsPerMinute: cfg.MaxAlertsPerMinute,
		Logger:             logger,
	}, store)

	return scanner.New(registry, matcher, calculator, dispatcher, store, logger)
}

func setupWorker(
	cfg *config.Config,
	logger *zap.Logger,
	jobQueue *queue.Queue,
	orchestrator *scanner.Orchestrator,
) *queue.Worker {
	handler := func(ctx context.Context, job queue.ScanJob, progress func(int)) error {
		_, err := orchestrator.Scan(ctx, job.PlatformA, job.PlatformB, job.Limit, progress)
		return err
	}

	return queue.NewWorker(jobQueue, handler, queue.WorkerConfig{
		MaxAttempts:    cfg.JobMaxAttempts,
		InitialBackoff: cfg.JobInitialBackoff,
		Logger:         logger,
	})
}
