package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mstolarz/vizquery/internal/config"
	"github.com/mstolarz/vizquery/internal/platform/gemini"
	"github.com/mstolarz/vizquery/internal/platform/logger"
	"github.com/mstolarz/vizquery/internal/platform/postgres"
	"github.com/mstolarz/vizquery/internal/plot"
	"github.com/mstolarz/vizquery/internal/service"
)

var (
	// Global flags
	databaseURL string
	modelName   string
	logLevel    string
	plotDir     string

	// Loaded configuration
	cfg *config.Config
	log *slog.Logger
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "vizquery",
	Short: "Ask a SQL database questions in plain language",
	Long: `vizquery answers natural-language questions about a PostgreSQL
database. It generates the SQL with an LLM, runs it, and renders the
result as a table or an HTML chart.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&databaseURL, "database-url", "", "database URL (defaults to VIZQUERY_DATABASE_URL)")
	rootCmd.PersistentFlags().
		StringVar(&modelName, "model", "", "model name (e.g. gemini-2.5-flash-lite)")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		StringVar(&plotDir, "plot-dir", "", "directory for rendered chart pages")
}

// initConfig loads .env and environment configuration, then applies flag
// overrides.
func initConfig() error {
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if databaseURL != "" {
		cfg.Database.URL = databaseURL
	}
	if modelName != "" {
		cfg.LLM.ModelName = modelName
	}
	if plotDir != "" {
		cfg.Plot.OutputDir = plotDir
	}

	log = logger.SetupCLI(logLevel)
	return nil
}

// buildVisualizer wires a Visualizer for one CLI invocation. The returned
// cleanup function closes the database connection.
func buildVisualizer(ctx context.Context) (*service.Visualizer, func(), error) {
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("no database URL; set --database-url or VIZQUERY_DATABASE_URL")
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	inspector := postgres.NewInspector(db, log)
	cleanup := func() {
		if err := inspector.Close(); err != nil {
			log.Warn("failed to close database connection", "error", err)
		}
	}

	generator, err := gemini.NewGeminiGenerator(ctx, log, cfg.LLM)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	visualizer, err := service.NewVisualizer(
		log, inspector, generator, plot.NewEngine(log),
		cfg.LLM.MaxSQLAttempts, cfg.Plot.OutputDir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return visualizer, cleanup, nil
}
