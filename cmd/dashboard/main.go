package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/congress-dashboard/internal/adapter/cache"
	"github.com/couchcryptid/congress-dashboard/internal/adapter/congressapi"
	"github.com/couchcryptid/congress-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/congress-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/congress-dashboard/internal/config"
	"github.com/couchcryptid/congress-dashboard/internal/dashboard"
	"github.com/couchcryptid/congress-dashboard/internal/geodata"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := cache.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to open reference cache", "error", err)
		os.Exit(1)
	}

	client := congressapi.NewClient(cfg.CongressAPIURL, cfg.CongressAPITimeout, metrics, logger)
	source := cache.NewReadThrough(client, store, cfg.CacheTTL, nil, metrics, logger)
	geo := geodata.NewStore(source, logger, metrics)
	topics := congressapi.NewCachedTopicCounter(client, cfg.TopicCacheSize)

	// View events are feature-flagged via KAFKA_ENABLED.
	var (
		pub       dashboard.Publisher
		publisher *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		pub = publisher
		logger.Info("view event publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaViewTopic)
	} else {
		logger.Info("view event publishing disabled")
	}

	d := dashboard.New(geo, congressapi.NewReference(source), topics, pub, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, d, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server. /readyz reports 503 until geo data is loaded.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load state and district geometry.
	go func() {
		if err := geo.LoadWithRetry(ctx); err != nil {
			logger.Warn("geo data load abandoned", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("reference cache close error", "error", err)
	}

	logger.Info("shutdown complete")
}
