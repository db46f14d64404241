package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/mstolarz/vizquery/internal/api/shared"
	"github.com/mstolarz/vizquery/internal/domain"
	"github.com/mstolarz/vizquery/internal/generation"
	"github.com/mstolarz/vizquery/internal/plot"
	"github.com/mstolarz/vizquery/internal/service"
)

// defaultRandomQuestionCount is used when the count query parameter is
// absent or invalid.
const defaultRandomQuestionCount = 5

// VisualizerProvider exposes the active visualizer and lets the settings
// endpoint swap it at runtime.
type VisualizerProvider interface {
	Current() (*service.Visualizer, error)
	Configure(ctx context.Context, databaseURL, model string) error
}

// VisualizerHandler handles question, schema, and settings HTTP requests.
type VisualizerHandler struct {
	provider VisualizerProvider
	// chartURLPrefix is the path the plots directory is served under.
	chartURLPrefix string
}

// NewVisualizerHandler creates a new VisualizerHandler.
func NewVisualizerHandler(provider VisualizerProvider, chartURLPrefix string) *VisualizerHandler {
	return &VisualizerHandler{
		provider:       provider,
		chartURLPrefix: chartURLPrefix,
	}
}

// UpdateSettings handles POST /api/settings requests.
func (h *VisualizerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.provider.Configure(r.Context(), req.DatabaseURL, req.Model); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadGateway,
			"Could not connect with the given settings", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SettingsResponse{
		Status: "configured",
		Model:  req.Model,
	})
}

// GetSchema handles GET /api/schema requests.
func (h *VisualizerHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	visualizer, ok := h.currentOrRespond(w, r)
	if !ok {
		return
	}

	schema, err := visualizer.ExportSchema(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to export schema", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, SchemaResponse{Schema: schema})
}

// SchemaImage handles GET /api/schema/image requests. The diagram is
// rendered on demand and served as an HTML page.
func (h *VisualizerHandler) SchemaImage(w http.ResponseWriter, r *http.Request) {
	visualizer, ok := h.currentOrRespond(w, r)
	if !ok {
		return
	}

	path, err := visualizer.SchemaImage(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to render the schema diagram", err)
		return
	}
	http.ServeFile(w, r, path)
}

// DescribeDatabase handles GET /api/describe requests.
func (h *VisualizerHandler) DescribeDatabase(w http.ResponseWriter, r *http.Request) {
	visualizer, ok := h.currentOrRespond(w, r)
	if !ok {
		return
	}

	stats, err := visualizer.DescribeDatabase(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to compute statistics", err)
		return
	}

	response := DescribeResponse{Stats: make([]ColumnStatsResponse, 0, len(stats))}
	for _, s := range stats {
		response.Stats = append(response.Stats, statsToDTOResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// AskQuestion handles POST /api/question requests.
func (h *VisualizerHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	visualizer, ok := h.currentOrRespond(w, r)
	if !ok {
		return
	}

	var req QuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := visualizer.QuestionToPlot(r.Context(), req.Question)
	if err != nil {
		h.respondQuestionError(w, r, err)
		return
	}

	response := QuestionResponse{
		Question:   req.Question,
		Columns:    result.Dataset.Columns,
		Rows:       result.Dataset.Rows,
		ShouldPlot: result.Decision == plot.DecisionChart,
	}
	if result.ChartPath != "" {
		response.ChartURL = h.chartURLPrefix + "/" + filepath.Base(result.ChartPath)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// RandomQuestions handles GET /api/random-questions requests. An optional
// count query parameter bounds how many questions are returned.
func (h *VisualizerHandler) RandomQuestions(w http.ResponseWriter, r *http.Request) {
	visualizer, ok := h.currentOrRespond(w, r)
	if !ok {
		return
	}

	count := defaultRandomQuestionCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			count = parsed
		}
	}

	questions, err := visualizer.RandomQuestions(r.Context(), count)
	if err != nil {
		h.respondQuestionError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RandomQuestionsResponse{Questions: questions})
}

// currentOrRespond fetches the active visualizer or answers 409 when no
// database connection has been configured yet.
func (h *VisualizerHandler) currentOrRespond(w http.ResponseWriter, r *http.Request) (*service.Visualizer, bool) {
	visualizer, err := h.provider.Current()
	if err != nil {
		shared.RespondWithError(w, r, http.StatusConflict,
			"No database connection configured; call /api/settings first")
		return nil, false
	}
	return visualizer, true
}

// respondQuestionError maps generation failures to HTTP status codes.
func (h *VisualizerHandler) respondQuestionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, generation.ErrModelNotFound):
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			"The configured model does not exist", err)
	case errors.Is(err, generation.ErrSourceExhausted):
		shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
			"The model is unavailable, try again later", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		shared.RespondWithErrorAndLog(w, r, http.StatusGatewayTimeout,
			"The request timed out", err)
	default:
		slog.Error("question handling failed", "error", err)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to answer the question", err)
	}
}

func statsToDTOResponse(s domain.ColumnStats) ColumnStatsResponse {
	return ColumnStatsResponse{
		Table:  s.Table,
		Column: s.Column,
		Type:   s.DeclaredType,
		Count:  s.Count,
		Min:    s.Min,
		Mean:   s.Mean,
		Max:    s.Max,
		Unique: s.Unique,
		Top:    s.Top,
		Freq:   s.Freq,
	}
}
