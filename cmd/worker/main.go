package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/rinori/backoffice/internal/app"
	"github.com/rinori/backoffice/internal/masterdata/candidates"
	"github.com/rinori/backoffice/internal/masterdata/channels"
	"github.com/rinori/backoffice/internal/pl"
	"github.com/rinori/backoffice/internal/platform/cache"
	"github.com/rinori/backoffice/internal/platform/db"
	"github.com/rinori/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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
		logger.Error("connect database", slog.Any("error", err))
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

	channelRepo := channels.NewRepository(pool)
	plService := pl.NewService(logger, pl.NewRepository(pool), redisClient, cfg.PLCacheTTL)
	warmupJob := jobs.NewPLWarmupJob(plService, channelRepo, logger, nil)

	candidatesService := candidates.NewService(candidates.NewRepository(pool))
	cleanupJob := jobs.NewCandidatesCleanupJob(candidatesService, logger, nil)

	warmupTask, err := jobs.NewPLWarmupTask(jobs.PLWarmupPayload{Months: 12})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewCandidatesCleanupTask(jobs.CandidatesCleanupPayload{RetentionDays: 90})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPLCacheWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskCandidatesCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * 0", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
