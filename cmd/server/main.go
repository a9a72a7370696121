package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/familyscout/familyscout/internal/api"
	"github.com/familyscout/familyscout/internal/cache"
	"github.com/familyscout/familyscout/internal/config"
	"github.com/familyscout/familyscout/internal/database"
	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/ingestion/adapters"
	"github.com/familyscout/familyscout/internal/logging"
	"github.com/familyscout/familyscout/internal/metrics"
	"github.com/familyscout/familyscout/internal/scheduler"
	"github.com/familyscout/familyscout/internal/server"
	"log/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting familyscout")

	ctx := context.Background()

	logger.Info("connecting to database")
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	eventRepo := database.NewPostgresEventRepository(db)
	runLogRepo := database.NewRunLogRepository(db)

	// Optional Redis read-through cache for event listings.
	var events api.EventLister = eventRepo
	var invalidator ingestion.CacheInvalidator
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, serving events without cache", "error", err)
		} else {
			eventCache := cache.New(client, eventRepo, cfg.Cache.TTL, logger)
			events = eventCache
			invalidator = eventCache
			logger.Info("event cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
		}
	}

	sources := make([]ingestion.SourceAdapter, 0)
	for _, adapter := range adapters.All(cfg.Ingestion.FetchTimeoutFor) {
		if cfg.Ingestion.SourceEnabled(adapter.Name()) {
			sources = append(sources, adapter)
		} else {
			logger.Info("source disabled", "source", adapter.Name())
		}
	}
	logger.Info("sources configured", "count", len(sources))

	normalizer, err := ingestion.NewNormalizer(cfg.Schedule.Timezone)
	if err != nil {
		logger.Error("failed to init normalizer", "error", err)
		os.Exit(1)
	}

	lexicon := ingestion.DefaultLexicon()
	if cfg.Ingestion.LexiconPath != "" {
		lexicon, err = ingestion.LoadLexicon(cfg.Ingestion.LexiconPath)
		if err != nil {
			logger.Error("failed to load lexicon", "path", cfg.Ingestion.LexiconPath, "error", err)
			os.Exit(1)
		}
		logger.Info("lexicon loaded", "path", cfg.Ingestion.LexiconPath)
	}
	classifier := ingestion.NewClassifier(lexicon)

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Schedule.Timezone, "error", err)
		os.Exit(1)
	}
	dedup := ingestion.NewDeduplicator(eventRepo, loc, cfg.Ingestion.EnrichDuplicates)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	retry := ingestion.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Ingestion.MaxRetries

	retryOverrides := make(map[string]ingestion.RetryPolicy, len(cfg.Ingestion.SourceMaxRetries))
	for name, retries := range cfg.Ingestion.SourceMaxRetries {
		policy := retry
		policy.MaxRetries = retries
		retryOverrides[name] = policy
	}

	orchestrator := ingestion.NewOrchestrator(sources, normalizer, classifier, dedup, runLogRepo, logger, ingestion.OrchestratorConfig{
		Concurrency:    cfg.Ingestion.ConcurrentSources,
		Retry:          retry,
		RetryOverrides: retryOverrides,
		Observer:       collector,
		Invalidator:    invalidator,
	})

	daily, err := scheduler.New(orchestrator, runLogRepo, logger, scheduler.RealClock(), cfg.Schedule.Timezone, cfg.Schedule.Hour, cfg.Schedule.Minute)
	if err != nil {
		logger.Error("failed to init scheduler", "error", err)
		os.Exit(1)
	}
	go daily.Start(ctx)

	mux := http.NewServeMux()
	handler := api.NewHandler(events, orchestrator, runLogRepo, sources, logger)
	api.SetupRoutes(mux, db, handler, collector.Handler(), logger)

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("familyscout started", "port", cfg.Server.Port)

	waitForSignal(logger)

	logger.Info("shutting down")
	daily.Stop()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
