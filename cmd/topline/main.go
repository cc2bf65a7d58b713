package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/topline-app/topline/internal/app"
	"github.com/topline-app/topline/internal/auth"
	"github.com/topline-app/topline/internal/behaviors"
	"github.com/topline-app/topline/internal/kpis"
	"github.com/topline-app/topline/internal/logs"
	"github.com/topline-app/topline/internal/observability"
	"github.com/topline-app/topline/internal/platform/cache"
	"github.com/topline-app/topline/internal/platform/db"
	"github.com/topline-app/topline/internal/roles"
	"github.com/topline-app/topline/internal/scoreboard"
	"github.com/topline-app/topline/internal/shared"
	"github.com/topline-app/topline/internal/users"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	tokens := auth.NewTokenManager(cfg.AuthSecret, cfg.TokenTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Tokens: tokens, Logger: logger}

	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	scoreboardRepo := scoreboard.NewRepository(dbpool)
	scoreboardCache := scoreboard.NewCache(redisClient, cfg.CacheTTL)
	scoreboardService := scoreboard.NewService(scoreboardRepo, scoreboardCache)
	if err := scoreboardCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	scoreboardHandler := scoreboard.NewHandler(logger, scoreboardService)

	behaviorsRepo := behaviors.NewRepository(dbpool)
	behaviorsService := behaviors.NewService(behaviorsRepo, auditLogger)
	behaviorsHandler := behaviors.NewHandler(logger, behaviorsService, authMiddleware)

	logsRepo := logs.NewRepository(dbpool)
	logsService := logs.NewService(logsRepo, behaviorsRepo, auditLogger, scoreboardService)
	logsHandler := logs.NewHandler(logger, logsService, authMiddleware)

	kpisRepo := kpis.NewRepository(dbpool)
	kpisService := kpis.NewService(kpisRepo, redisClient, cfg.CacheTTL, auditLogger)
	kpisHandler := kpis.NewHandler(logger, kpisService, authMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, authMiddleware)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, auditLogger)
	rolesHandler := roles.NewHandler(logger, rolesService, authMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, authMiddleware, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthMiddleware:    authMiddleware,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		RolesHandler:      rolesHandler,
		BehaviorsHandler:  behaviorsHandler,
		LogsHandler:       logsHandler,
		ScoreboardHandler: scoreboardHandler,
		KPIsHandler:       kpisHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
