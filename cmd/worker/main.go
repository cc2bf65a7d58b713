package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/topline-app/topline/internal/app"
	"github.com/topline-app/topline/internal/logs"
	"github.com/topline-app/topline/internal/observability"
	"github.com/topline-app/topline/internal/platform/cache"
	"github.com/topline-app/topline/internal/platform/db"
	"github.com/topline-app/topline/internal/scoreboard"
	"github.com/topline-app/topline/jobs"
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

	metrics := observability.NewMetrics()

	scoreboardRepo := scoreboard.NewRepository(pool)
	scoreboardCache := scoreboard.NewCache(redisClient, cfg.CacheTTL)
	scoreboardService := scoreboard.NewService(scoreboardRepo, scoreboardCache)
	logsRepo := logs.NewRepository(pool)

	warmupJob := jobs.NewScoreboardWarmupJob(scoreboardService, logger, metrics)
	digestJob := jobs.NewVerificationDigestJob(logsRepo, scoreboardRepo, logger, metrics)

	warmupTask, err := jobs.NewScoreboardWarmupTask(jobs.ScoreboardWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	digestTask, err := jobs.NewVerificationDigestTask(jobs.VerificationDigestPayload{})
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskScoreboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskVerificationDigest, Handler: digestJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 16 * * *", Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
