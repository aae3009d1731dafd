package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/sitegrid-erp/sitegrid/internal/analytics"
	"github.com/sitegrid-erp/sitegrid/internal/app"
	"github.com/sitegrid-erp/sitegrid/internal/observability"
	"github.com/sitegrid-erp/sitegrid/internal/platform/cache"
	"github.com/sitegrid-erp/sitegrid/internal/platform/db"
	"github.com/sitegrid-erp/sitegrid/internal/procurement"
	"github.com/sitegrid-erp/sitegrid/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	repo := procurement.NewRepository(pool)
	service, err := analytics.NewService(repo, cfg.EngineConfig(), logger)
	if err != nil {
		logger.Error("init analytics service", slog.Any("error", err))
		os.Exit(1)
	}
	service.WithObserver(metrics)

	digest := jobs.NewDigest(service, repo, redisClient, logger, metrics)
	qualityScan := jobs.NewQualityScan(service, repo, logger, metrics)

	digestTask, err := jobs.NewAlertDigestTask(jobs.AlertDigestPayload{})
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAlertDigest, Handler: digest.Handle},
			{Type: jobs.TaskQualityScan, Handler: qualityScan.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: jobs.NewQualityScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
