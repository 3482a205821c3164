package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/shipping-estimate-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/shipping-estimate-service/internal/adapter/kafka"
	"github.com/couchcryptid/shipping-estimate-service/internal/config"
	"github.com/couchcryptid/shipping-estimate-service/internal/distance"
	"github.com/couchcryptid/shipping-estimate-service/internal/estimate"
	"github.com/couchcryptid/shipping-estimate-service/internal/observability"
	"github.com/couchcryptid/shipping-estimate-service/internal/zipstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the dataset before accepting traffic so the first request does not pay for it.
	coords := zipstore.NewLazy(zipstore.SourceLoader(cfg.ZipDataPath, logger, metrics))
	if _, err := coords.Get(ctx); err != nil {
		logger.Error("failed to load postal code dataset", "error", err)
		os.Exit(1)
	}

	opts := []estimate.Option{estimate.WithLocation(cfg.ShipLocation)}

	var publisher *kafkaadapter.Publisher
	if cfg.EventsEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		opts = append(opts, estimate.WithPublisher(publisher))
		metrics.EventsEnabled.Set(1)
		logger.Info("estimate events enabled", "topic", cfg.KafkaEstimatesTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("estimate events disabled")
	}

	engine := distance.NewEngine(cfg.DistanceCacheSize, metrics)
	est := estimate.New(coords, engine, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, est, coords, logger)

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
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
