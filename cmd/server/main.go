// Package main implements the entry point for the vizquery API server,
// which answers natural-language questions about a SQL database by
// generating queries and charts with an LLM.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; environment variables still apply.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		slog.Error("Server exited with error", "error", err)
	}
}
