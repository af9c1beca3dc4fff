package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/quillbooks/quillbooks/internal/app"
	jobmetrics "github.com/quillbooks/quillbooks/internal/jobs"
	"github.com/quillbooks/quillbooks/internal/ledger/fx"
	"github.com/quillbooks/quillbooks/internal/ledger/recon"
	"github.com/quillbooks/quillbooks/internal/ledger/reports"
	"github.com/quillbooks/quillbooks/internal/platform/cache"
	"github.com/quillbooks/quillbooks/internal/platform/db"
	"github.com/quillbooks/quillbooks/internal/shared"
	"github.com/quillbooks/quillbooks/jobs"
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

	metrics := jobmetrics.NewMetrics(nil)

	reportsService := reports.NewService(reports.NewRepository(dbpool), cfg.LedgerCurrency, fx.Unavailable{})
	integrity := jobs.NewIntegrityChecker(reportsService, logger).WithMetrics(metrics)

	reconService := recon.NewService(recon.NewRepository(dbpool), redisClient, auditLogger)
	reconRunner := jobs.NewReconRunner(reconService, logger).WithMetrics(metrics)

	// Empty payload: the handler checks the ledger as of the run date.
	nightly := asynq.NewTask(jobs.TaskLedgerIntegrity, nil)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: integrity.Handle},
			{Type: jobs.TaskReconcileStatement, Handler: reconRunner.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: nightly},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
