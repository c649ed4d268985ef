// Package cli holds the startup plumbing shared by cmd/upilens,
// cmd/upilens-worker and cmd/upilens-import.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"upilens/internal/config"
	"upilens/internal/log"
)

// SetupLogger initializes structured logging and sets it as default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context cancelled on SIGINT/SIGTERM and a channel closed
// when cleanup has finished.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
