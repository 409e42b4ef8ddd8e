// Package cli provides process initialization and terminal rendering
// shared by the spendwise commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendwise/internal/config"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// SetupLogger initializes structured logging on stderr so that rendered
// output on stdout stays clean. It also becomes the default logger.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadCatalog returns the configured challenge catalog, or the built-in
// one when no file is set.
func LoadCatalog(cfg *config.Config) ([]core.ChallengeDefinition, error) {
	if cfg == nil || cfg.ChallengesFile == "" {
		return config.DefaultChallengeCatalog(), nil
	}
	defs, err := config.LoadChallengeCatalog(cfg.ChallengesFile)
	if err != nil {
		return nil, fmt.Errorf("load challenge catalog: %w", err)
	}
	return defs, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. Call
// stop to release the signal handler.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
