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

	"github.com/quillbooks/quillbooks/internal/app"
	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/export"
	"github.com/quillbooks/quillbooks/internal/ledger/fx"
	"github.com/quillbooks/quillbooks/internal/ledger/journal"
	"github.com/quillbooks/quillbooks/internal/ledger/recon"
	"github.com/quillbooks/quillbooks/internal/ledger/reports"
	"github.com/quillbooks/quillbooks/internal/observability"
	"github.com/quillbooks/quillbooks/internal/platform/cache"
	"github.com/quillbooks/quillbooks/internal/platform/db"
	"github.com/quillbooks/quillbooks/internal/shared"
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

	auditLogger := shared.NewAuditLogger(dbpool)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	journalRepo := journal.NewRepository(dbpool)
	journalService := journal.NewService(journalRepo, auditLogger)
	journalHandler := journal.NewHandler(logger, journalService)

	reportsRepo := reports.NewRepository(dbpool)
	reportsService := reports.NewService(reportsRepo, cfg.LedgerCurrency, fx.Unavailable{})
	reportsHandler := reports.NewHandler(logger, reportsService)

	reconRepo := recon.NewRepository(dbpool)
	reconService := recon.NewService(reconRepo, redisClient, auditLogger)
	reconHandler := recon.NewHandler(logger, reconService)

	var exportHandler *export.Handler
	if cfg.GotenbergURL != "" {
		exportHandler = export.NewHandler(logger, export.NewClient(cfg.GotenbergURL), reportsService)
	}

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Metrics:         metrics,
		AccountsHandler: accountsHandler,
		JournalHandler:  journalHandler,
		ReportsHandler:  reportsHandler,
		ReconHandler:    reconHandler,
		ExportHandler:   exportHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
