package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/farm-yield-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/farm-yield-service/internal/adapter/kafka"
	"github.com/couchcryptid/farm-yield-service/internal/adapter/memory"
	"github.com/couchcryptid/farm-yield-service/internal/adapter/sqlite"
	"github.com/couchcryptid/farm-yield-service/internal/config"
	"github.com/couchcryptid/farm-yield-service/internal/domain"
	"github.com/couchcryptid/farm-yield-service/internal/engine"
	"github.com/couchcryptid/farm-yield-service/internal/observability"
	"github.com/couchcryptid/farm-yield-service/internal/records"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Record storage: SQLite when a path is configured, memory otherwise.
	var backend records.Backend
	var db *sqlite.Store
	if cfg.RecordsDBPath != "" {
		db, err = sqlite.Open(cfg.RecordsDBPath)
		if err != nil {
			logger.Error("failed to open records database", "path", cfg.RecordsDBPath, "error", err)
			os.Exit(1)
		}
		backend = db
		logger.Info("record store using sqlite", "path", cfg.RecordsDBPath)
	} else {
		backend = memory.New()
		logger.Info("record store using memory; records will not survive restart")
	}

	store := records.New(backend, logger, metrics)
	if err := store.Init(context.Background()); err != nil {
		logger.Warn("record store init failed; listing will serve seed records", "error", err)
	}

	rng := domain.DefaultRandom()
	if cfg.RandomSeedSet {
		rng = domain.NewSeededRandom(cfg.RandomSeed)
		logger.Info("deterministic randomness enabled", "seed", cfg.RandomSeed)
	}
	estimator := domain.NewEstimator(domain.WithRandom(rng), domain.WithLatency(cfg.EstimateLatency))
	weather := domain.NewWeatherSource(rng)

	opts := []engine.Option{engine.WithDefaultCrop(domain.Crop(cfg.DefaultRiskCrop))}

	// Event publishing (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, engine.WithPublisher(writer))
		metrics.PublishingEnabled.Set(1)
		logger.Info("kafka publishing enabled",
			"brokers", cfg.KafkaBrokers,
			"predictions_topic", cfg.KafkaPredictionsTopic,
			"alerts_topic", cfg.KafkaAlertsTopic,
		)
	} else {
		logger.Info("kafka publishing disabled")
	}

	eng := engine.New(estimator, weather, store, logger, metrics, opts...)
	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("records database close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
