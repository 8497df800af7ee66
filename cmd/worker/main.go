package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webcrawler/internal/config"
	"webcrawler/internal/infra/adapter/persistence/mongo"
	"webcrawler/internal/infra/fetcher"
	"webcrawler/internal/infra/parser"
	"webcrawler/internal/infra/scheduler"
	workerPkg "webcrawler/internal/infra/worker"
	"webcrawler/internal/repository"
	"webcrawler/internal/usecase/crawl"
)

func main() {
	logger := initLogger()

	metrics := workerPkg.NewCrawlerMetrics()
	metrics.MustRegister()

	cfg := config.LoadCoreConfigFromEnv(logger, metrics.ConfigMetrics)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Error("failed to open log file", slog.String("log_file", cfg.LogFile), slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = logFile.Close() }()
		logLevel := slog.LevelInfo
		if cfg.LogLevel == "debug" {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, logFile), &slog.HandlerOptions{Level: logLevel}))
		slog.SetDefault(logger)
	}
	logger.Info("configuration loaded",
		slog.String("mongodb_db", cfg.MongoDB),
		slog.String("crawler_user_agent", cfg.UserAgent),
		slog.Duration("crawler_delay", cfg.CrawlDelay),
		slog.Int("max_workers", cfg.MaxWorkers))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("failed to connect to mongodb", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Disconnect(shutdownCtx); err != nil {
			logger.Error("failed to disconnect from mongodb", slog.Any("error", err))
		}
	}()

	sources := mongo.NewSourceRepo(db)
	documents := mongo.NewDocumentRepo(db)
	stats := mongo.NewCrawlStatsRepo(db)

	fetcherCfg := fetcher.DefaultConfig()
	fetcherCfg.UserAgent = cfg.UserAgent
	fetcherCfg.CrawlDelay = cfg.CrawlDelay
	fetcherCfg.RequestTimeout = cfg.RequestTimeout
	fetcherCfg.MaxRetries = cfg.MaxRetries

	fetch, err := fetcher.New(fetcherCfg)
	if err != nil {
		logger.Error("failed to build fetcher", slog.Any("error", err))
		os.Exit(1)
	}
	defer fetch.Close()

	parsers := parser.NewFactory(fetch).CreateParsers()

	manager := crawl.NewManager(fetch, parsers, sources, documents, stats, metrics, logger)

	healthAddr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger)

	sched := scheduler.New(manager.CrawlSource, sources, logger)

	reconcileStaleRunning(ctx, logger, sources)

	if err := sched.LoadAllSources(ctx); err != nil {
		logger.Error("failed to load sources into scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	sched.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("health_addr", healthAddr),
		slog.Int("jobs", len(sched.ListJobs())))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	shutdownScheduler(logger, sched)
	fetch.Close()
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// reconcileStaleRunning moves Sources left in StatusRunning by a previous
// process that crashed mid-crawl to StatusFailed, before the scheduler starts
// handing out new runs. Only sources whose last crawl started more than an
// hour ago (or never recorded a start) are reconciled.
func reconcileStaleRunning(ctx context.Context, logger *slog.Logger, sources repository.SourceRepository) {
	n, err := sources.ReconcileStaleRunning(ctx, time.Now().Add(-1*time.Hour))
	if err != nil {
		logger.Error("failed to reconcile stale running sources", slog.Any("error", err))
		return
	}
	if n > 0 {
		logger.Warn("reconciled stale running sources", slog.Int("count", n))
	}
}

// shutdownScheduler stops the scheduler, waiting for any job invocations
// currently mid-flight: the first step of the shutdown ordering, stop
// scheduler -> close fetcher sessions -> disconnect store.
func shutdownScheduler(logger *slog.Logger, sched *scheduler.Scheduler) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Shutdown(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown error", slog.Any("error", err))
	}
}
