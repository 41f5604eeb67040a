// Command server runs the accounts HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/accounts/internal/app"
	"github.com/utafrali/accounts/internal/config"
	"github.com/utafrali/accounts/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("accounts service exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(config.ServiceName+"-service", cfg.LogLevel)
	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.Bool("profile_cache", cfg.ProfileCacheEnabled),
		slog.Any("overridden", cfg.Overridden()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	accounts, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("build accounts service: %w", err)
	}

	if err := accounts.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("accounts service stopped")
	return nil
}
