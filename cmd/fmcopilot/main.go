package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/philiplawlor/fm-copilot/internal/api"
	"github.com/philiplawlor/fm-copilot/internal/cache"
	"github.com/philiplawlor/fm-copilot/internal/cmms"
	"github.com/philiplawlor/fm-copilot/internal/config"
	"github.com/philiplawlor/fm-copilot/internal/events"
	"github.com/philiplawlor/fm-copilot/internal/recommender"
	"github.com/philiplawlor/fm-copilot/internal/scoring"
	"github.com/philiplawlor/fm-copilot/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Logging.Level)}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Events (optional)
	var eventsClient events.Client
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// Cache (optional)
	var cacheClient cache.Cache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, logger)
		if err != nil {
			logger.Warn("failed to connect to redis, running without cache", "error", err)
		} else {
			cacheClient = rc
			defer rc.Close()
			logger.Info("connected to redis")
		}
	}

	// Scoring engine
	scorer, err := scoring.NewScorer(cfg.TechnicianWeights(), cfg.VendorWeights())
	if err != nil {
		logger.Error("invalid scoring weights", "error", err)
		os.Exit(1)
	}
	engine := recommender.NewEngine(db, scorer, logger)

	// CMMS integrations
	manager := cmms.NewManager()
	if cfg.CMMS.Fiix.URL != "" {
		manager.Register(cmms.NewFiixClient(cfg.CMMS.Fiix.URL, cfg.CMMS.Fiix.APIKey))
	}
	if cfg.CMMS.UpKeep.URL != "" {
		manager.Register(cmms.NewUpKeepClient(cfg.CMMS.UpKeep.URL, cfg.CMMS.UpKeep.Token))
	}

	var syncer *cmms.Syncer
	if len(manager.Integrations()) > 0 {
		syncer = cmms.NewSyncer(manager, db, eventsClient, cfg.CMMS.OrgID, logger)
		if err := syncer.Start(ctx, cfg.CMMS.SyncSchedule); err != nil {
			logger.Error("failed to start cmms syncer", "error", err)
			os.Exit(1)
		}
	}

	// API server
	router := api.NewRouter(api.Deps{
		Store:      db,
		Engine:     engine,
		Events:     eventsClient,
		Cache:      cacheClient,
		Syncer:     syncer,
		CacheTTL:   cfg.CacheTTL(),
		AdminToken: cfg.Server.AdminToken,
		Logger:     logger,
	})
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
