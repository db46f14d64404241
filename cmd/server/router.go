package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mstolarz/vizquery/internal/api"
	apiMiddleware "github.com/mstolarz/vizquery/internal/api/middleware"
)

// chartURLPrefix is the URL path rendered chart pages are served under.
const chartURLPrefix = "/plots"

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	visualizerHandler := api.NewVisualizerHandler(app.provider, chartURLPrefix)

	r.Route("/api", func(r chi.Router) {
		r.Post("/settings", visualizerHandler.UpdateSettings)
		r.Get("/schema", visualizerHandler.GetSchema)
		r.Get("/schema/image", visualizerHandler.SchemaImage)
		r.Get("/describe", visualizerHandler.DescribeDatabase)
		r.Post("/question", visualizerHandler.AskQuestion)
		r.Get("/random-questions", visualizerHandler.RandomQuestions)
	})

	// Rendered chart pages are plain static files.
	fileServer := http.StripPrefix(chartURLPrefix+"/",
		http.FileServer(http.Dir(app.config.Plot.OutputDir)))
	r.Get(chartURLPrefix+"/*", fileServer.ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
