package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tasklist/internal/adapter/http/routes"
	"tasklist/internal/core/port"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"
	"tasklist/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// StartServerWithConfig serves the API until ctx is cancelled, then drains
// in-flight requests and closes the store.
func StartServerWithConfig(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics, log *logger.LokiLogger, probe port.Telemetry) error {
	container, err := NewContainer(ctx, cfg, log, metrics, probe)

	if err != nil {
		return err
	}

	defer container.Close()

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		AuthHandler:   container.AuthHandler,
		UserHandler:   container.UserHandler,
		TaskHandler:   container.TaskHandler,
		HealthHandler: container.HealthHandler,
		JWT:           container.JWT,
		Users:         container.UserService,
	}, metrics, log, cfg)

	log.Logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
