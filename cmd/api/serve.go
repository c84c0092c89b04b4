package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/njprem/lighthouse-api/internal/config"
	"github.com/njprem/lighthouse-api/internal/logging"
	httpx "github.com/njprem/lighthouse-api/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

var swaggerPath string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&swaggerPath, "swagger", httpx.DefaultSwaggerSpecPath, "path to the OpenAPI document")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger, closer := logging.Setup(cfg.LogLevel, cfg.LogstashTCPAddr)
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		return err
	}
	defer a.close()

	cookie := httpx.SessionCookieConfig{Name: cfg.SessionCookieName, Secure: cfg.SessionCookieSecure}
	e := httpx.NewRouter(cfg.AllowOrigins, logger)
	httpx.RegisterPages(e)
	httpx.RegisterSwagger(e, swaggerPath, logger)
	httpx.RegisterAuth(e, a.auth, cookie, cfg.Development(), logger)
	httpx.RegisterProfile(e, a.auth, a.profiles, cookie, logger)

	if cfg.Development() {
		logger.Warn("development mode: reset tokens are returned in API responses")
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("port", cfg.Port), slog.String("env", cfg.AppEnv))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", slog.Any("error", err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
