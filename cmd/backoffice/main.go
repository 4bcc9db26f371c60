package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/hibiken/asynq"

	"github.com/rinori/backoffice/internal/adspend"
	"github.com/rinori/backoffice/internal/app"
	"github.com/rinori/backoffice/internal/auth"
	"github.com/rinori/backoffice/internal/budgets"
	"github.com/rinori/backoffice/internal/importer"
	"github.com/rinori/backoffice/internal/masterdata/candidates"
	"github.com/rinori/backoffice/internal/masterdata/channels"
	"github.com/rinori/backoffice/internal/masterdata/products"
	"github.com/rinori/backoffice/internal/masterdata/taxrates"
	"github.com/rinori/backoffice/internal/observability"
	"github.com/rinori/backoffice/internal/pl"
	"github.com/rinori/backoffice/internal/platform/cache"
	"github.com/rinori/backoffice/internal/platform/db"
	"github.com/rinori/backoffice/internal/shared"
	"github.com/rinori/backoffice/internal/users"
	"github.com/rinori/backoffice/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, "rinori_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	usersService := users.NewService(users.NewRepository(pool))
	usersHandler := users.NewHandler(logger, usersService)

	productsService := products.NewService(products.NewRepository(pool))
	productsHandler := products.NewHandler(logger, productsService)

	candidatesService := candidates.NewService(candidates.NewRepository(pool))
	candidatesHandler := candidates.NewHandler(logger, candidatesService)

	taxRatesService := taxrates.NewService(taxrates.NewRepository(pool))
	taxRatesHandler := taxrates.NewHandler(logger, taxRatesService)

	channelRepo := channels.NewRepository(pool)
	channelsService := channels.NewService(channelRepo)
	channelsHandler := channels.NewHandler(logger, channelsService)

	importService := importer.NewService(
		logger,
		importer.NewRepository(pool),
		taxRatesService,
		redislock.New(redisClient),
		metrics,
		cfg.ImportLockTTL,
	)
	importHandler := importer.NewHandler(logger, importService, cfg.MaxUploadBytes)

	plService := pl.NewService(logger, pl.NewRepository(pool), redisClient, cfg.PLCacheTTL)
	plHandler := pl.NewHandler(logger, plService)

	adSpendService := adspend.NewService(adspend.NewRepository(pool))
	adSpendHandler := adspend.NewHandler(logger, adSpendService)

	budgetsService := budgets.NewService(budgets.NewRepository(pool))
	budgetsHandler := budgets.NewHandler(logger, budgetsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,

		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		ProductsHandler:   productsHandler,
		CandidatesHandler: candidatesHandler,
		TaxRatesHandler:   taxRatesHandler,
		ChannelsHandler:   channelsHandler,
		ImportHandler:     importHandler,
		PLHandler:         plHandler,
		AdSpendHandler:    adSpendHandler,
		BudgetsHandler:    budgetsHandler,
		JobHandler:        jobHandler,

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
