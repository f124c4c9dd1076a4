package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/met-update-db/internal/adapter/breaker"
	"github.com/couchcryptid/met-update-db/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/met-update-db/internal/adapter/kafka"
	"github.com/couchcryptid/met-update-db/internal/adapter/mongo"
	"github.com/couchcryptid/met-update-db/internal/config"
	"github.com/couchcryptid/met-update-db/internal/coverage"
	"github.com/couchcryptid/met-update-db/internal/observability"
	"github.com/couchcryptid/met-update-db/internal/pipeline"
	"github.com/couchcryptid/met-update-db/internal/resolver"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	logger.Info("mongodb connected", "database", cfg.MongoDatabase)

	repo := breaker.New(store, breaker.Settings{
		Name:             "mongo",
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	}, logger, metrics)

	res := resolver.New(repo, resolver.Options{MetarMaxAge: cfg.MetarMaxAge}, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	p := pipeline.New(reader, pipeline.NewTransformer(logger), pipeline.NewLoader(repo, logger), logger, metrics, cfg.BatchSize)

	var deadLetter *kafkaadapter.DeadLetterWriter
	if cfg.KafkaDeadLetterTopic != "" {
		deadLetter = kafkaadapter.NewDeadLetterWriter(cfg, logger)
		p.WithDeadLetter(deadLetter)
		logger.Info("dead-letter topic enabled", "topic", cfg.KafkaDeadLetterTopic)
	}

	ready := observability.ReadinessChecks{store, p}
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, res, clock, logger)

	monitor := coverage.New(res, cfg.CoverageAirports, cfg.CoverageSchedule, clock, logger, metrics)
	if err := monitor.Start(); err != nil {
		logger.Error("failed to start coverage monitor", "error", err)
		os.Exit(1)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingestion pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	monitor.Stop(shutdownCtx)
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if deadLetter != nil {
		if err := deadLetter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("mongodb disconnect error", "error", err)
	}

	logger.Info("shutdown complete")
}
