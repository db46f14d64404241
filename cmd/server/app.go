package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mstolarz/vizquery/internal/config"
	"github.com/mstolarz/vizquery/internal/generation"
	"github.com/mstolarz/vizquery/internal/platform/gemini"
	"github.com/mstolarz/vizquery/internal/platform/logger"
	"github.com/mstolarz/vizquery/internal/platform/postgres"
	"github.com/mstolarz/vizquery/internal/plot"
	"github.com/mstolarz/vizquery/internal/service"
	"github.com/mstolarz/vizquery/internal/store"
)

// application holds the dependencies shared by the HTTP handlers.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	provider *service.Provider
}

// newApplication loads configuration, sets up logging, and wires the
// visualizer provider. When a database URL is configured, the initial
// connection is established eagerly; otherwise the server starts
// unconfigured and waits for the settings endpoint.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.LLM.ModelName)

	provider, err := service.NewProvider(
		log,
		inspectorFactory(log),
		generatorFactory(log, cfg.LLM),
		plot.NewEngine(log),
		cfg.LLM.MaxSQLAttempts,
		cfg.Plot.OutputDir,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create visualizer provider: %w", err)
	}

	app := &application{
		config:   cfg,
		logger:   log,
		provider: provider,
	}

	if cfg.Database.URL != "" {
		if err := provider.Configure(ctx, cfg.Database.URL, ""); err != nil {
			// The settings endpoint can still bring up a working
			// connection, so a failed initial connect is not fatal.
			log.Warn("initial database connection failed", "error", err)
		}
	}

	return app, nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if err := app.provider.Close(); err != nil {
		app.logger.Error("Failed to close visualizer provider", "error", err)
	}
}

// inspectorFactory opens a pooled connection for a database URL and wraps
// it in a schema inspector.
func inspectorFactory(log *slog.Logger) service.InspectorFactory {
	return func(ctx context.Context, databaseURL string) (store.Inspector, error) {
		db, err := setupAppDatabase(ctx, databaseURL, log)
		if err != nil {
			return nil, err
		}
		return postgres.NewInspector(db, log), nil
	}
}

// generatorFactory builds Gemini generators, overriding the configured
// model name when the caller supplies one.
func generatorFactory(log *slog.Logger, llmCfg config.LLMConfig) service.GeneratorFactory {
	return func(ctx context.Context, model string) (generation.Generator, error) {
		cfg := llmCfg
		if model != "" {
			cfg.ModelName = model
		}
		return gemini.NewGeminiGenerator(ctx, log, cfg)
	}
}
