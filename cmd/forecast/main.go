package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/meteo-forecast-etl/internal/adapter/aemet"
	kafkaadapter "github.com/couchcryptid/meteo-forecast-etl/internal/adapter/kafka"
	"github.com/couchcryptid/meteo-forecast-etl/internal/adapter/mailrelay"
	"github.com/couchcryptid/meteo-forecast-etl/internal/config"
	"github.com/couchcryptid/meteo-forecast-etl/internal/observability"
	"github.com/couchcryptid/meteo-forecast-etl/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	source := aemet.NewClient(cfg.HTTPTimeout, logger)
	dispatcher := mailrelay.NewClient(cfg.HTTPTimeout, logger)

	var archiver pipeline.ReportArchiver
	if cfg.ArchiveEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		archiver = writer
		logger.Info("report archive enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaArchiveTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, source, dispatcher, archiver, logger, metrics)
	runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, cfg.MetricsJob); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}
