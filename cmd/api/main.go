package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	api "tasklist/internal/adapter/http"
	"tasklist/internal/adapter/telemetry"
	"tasklist/pkg/config"
	"tasklist/pkg/logger"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lokiLogger, err := logger.NewLokiLogger(cfg.ServiceName, cfg.LokiURL)

	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	defer lokiLogger.Sync()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, lokiLogger.Zap())

	if err != nil {
		lokiLogger.Logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			lokiLogger.Logger.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	tel.AppMetrics.StartSystemMetrics(ctx)

	probe := tel.NewTelemetryProbe(lokiLogger.Zap())

	if err := api.StartServerWithConfig(ctx, cfg, tel.AppMetrics, lokiLogger, probe); err != nil {
		lokiLogger.Logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
