package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstolarz/vizquery/internal/domain"
	"github.com/mstolarz/vizquery/internal/generation"
	"github.com/mstolarz/vizquery/internal/plot"
	"github.com/mstolarz/vizquery/internal/service"
)

// stubInspector serves a fixed schema and dataset.
type stubInspector struct {
	schema  string
	dataset *domain.Dataset
	stats   []domain.ColumnStats
}

func (s *stubInspector) ExecuteQuery(context.Context, string) (*domain.Dataset, error) {
	return s.dataset, nil
}

func (s *stubInspector) ListTables(context.Context) ([]string, error) {
	return []string{"orders"}, nil
}

func (s *stubInspector) ColumnInfo(context.Context, string) ([]domain.Column, error) {
	return []domain.Column{{Name: "total", DeclaredType: "bigint"}}, nil
}

func (s *stubInspector) ExportSchema(context.Context) (string, error) { return s.schema, nil }

func (s *stubInspector) DescribeTable(context.Context, string) ([]domain.ColumnStats, error) {
	return s.stats, nil
}

func (s *stubInspector) DescribeDatabase(context.Context) ([]domain.ColumnStats, error) {
	return s.stats, nil
}

func (s *stubInspector) Close() error { return nil }

// stubGenerator answers SQL prompts with a query and plot prompts with
// chart parameters. A non-nil err fails every call.
type stubGenerator struct {
	err error
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string, _ int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if strings.Contains(prompt, "df-columns") {
		return "```json\n{\"should_plot\":true,\"kind\":\"bar\",\"x\":\"region\",\"y\":\"total\"}\n```", nil
	}
	if strings.Contains(prompt, "one question per line") {
		return "1. How many orders are there?\n2. Which region sells most?\n", nil
	}
	return "```sql\nSELECT region, total FROM orders\n```", nil
}

// stubEngine returns a fixed chart path; savePath overrides it when a test
// needs the saved page to exist on disk.
type stubEngine struct {
	savePath string
}

func (stubEngine) Render(*domain.Dataset, plot.Params) (plot.ChartHandle, error) {
	return plot.SingleChart(nil), nil
}

func (stubEngine) RenderSchema([]plot.SchemaTable) (plot.ChartHandle, error) {
	return plot.SingleChart(nil), nil
}

func (s stubEngine) SaveHTML(plot.ChartHandle, string) (string, error) {
	if s.savePath != "" {
		return s.savePath, nil
	}
	return "plots/chart-abc.html", nil
}

// stubProvider hands out a fixed visualizer and records Configure calls.
type stubProvider struct {
	visualizer   *service.Visualizer
	configureErr error
	configured   []string
}

func (s *stubProvider) Current() (*service.Visualizer, error) {
	if s.visualizer == nil {
		return nil, service.ErrNotConfigured
	}
	return s.visualizer, nil
}

func (s *stubProvider) Configure(_ context.Context, databaseURL, model string) error {
	s.configured = append(s.configured, fmt.Sprintf("%s|%s", databaseURL, model))
	return s.configureErr
}

func testVisualizer(t *testing.T, gen *stubGenerator) *service.Visualizer {
	t.Helper()
	return testVisualizerWithEngine(t, gen, stubEngine{})
}

func testVisualizerWithEngine(t *testing.T, gen *stubGenerator, engine stubEngine) *service.Visualizer {
	t.Helper()

	ds := domain.NewDataset([]string{"region", "total"})
	require.NoError(t, ds.AppendRow([]any{"north", int64(10)}))

	inspector := &stubInspector{
		schema:  "CREATE TABLE orders (\n    region text,\n    total bigint\n);",
		dataset: ds,
		stats:   []domain.ColumnStats{{Table: "orders", Column: "total", DeclaredType: "bigint", Count: 1}},
	}

	v, err := service.NewVisualizer(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		inspector, gen, engine, 2, "plots")
	require.NoError(t, err)
	return v
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()

	t.Run("valid settings reconfigure the provider", func(t *testing.T) {
		t.Parallel()

		provider := &stubProvider{}
		handler := NewVisualizerHandler(provider, "/plots")

		body := `{"database_url":"postgres://app@localhost:5432/shop","model":"gemini-2.5-pro"}`
		req := httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.UpdateSettings(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, provider.configured, 1)
		assert.Equal(t, "postgres://app@localhost:5432/shop|gemini-2.5-pro", provider.configured[0])

		var resp SettingsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "configured", resp.Status)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		handler := NewVisualizerHandler(&stubProvider{}, "/plots")
		req := httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		handler.UpdateSettings(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing database url", func(t *testing.T) {
		t.Parallel()

		handler := NewVisualizerHandler(&stubProvider{}, "/plots")
		req := httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader(`{"model":"gemini-2.5-pro"}`))
		rec := httptest.NewRecorder()
		handler.UpdateSettings(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("connection failure", func(t *testing.T) {
		t.Parallel()

		provider := &stubProvider{configureErr: errors.New("connection refused")}
		handler := NewVisualizerHandler(provider, "/plots")

		body := `{"database_url":"postgres://app@localhost:5432/shop"}`
		req := httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.UpdateSettings(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGetSchema(t *testing.T) {
	t.Parallel()

	t.Run("returns the DDL", func(t *testing.T) {
		t.Parallel()

		provider := &stubProvider{visualizer: testVisualizer(t, &stubGenerator{})}
		handler := NewVisualizerHandler(provider, "/plots")

		req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
		rec := httptest.NewRecorder()
		handler.GetSchema(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp SchemaResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Schema, "CREATE TABLE orders")
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		t.Parallel()

		handler := NewVisualizerHandler(&stubProvider{}, "/plots")
		req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
		rec := httptest.NewRecorder()
		handler.GetSchema(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestSchemaImage(t *testing.T) {
	t.Parallel()

	t.Run("serves the rendered page", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "chart-schema.html")
		require.NoError(t, os.WriteFile(path, []byte("<html>echarts</html>"), 0o644))

		visualizer := testVisualizerWithEngine(t, &stubGenerator{}, stubEngine{savePath: path})
		handler := NewVisualizerHandler(&stubProvider{visualizer: visualizer}, "/plots")

		req := httptest.NewRequest(http.MethodGet, "/api/schema/image", nil)
		rec := httptest.NewRecorder()
		handler.SchemaImage(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "echarts")
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		t.Parallel()

		handler := NewVisualizerHandler(&stubProvider{}, "/plots")
		req := httptest.NewRequest(http.MethodGet, "/api/schema/image", nil)
		rec := httptest.NewRecorder()
		handler.SchemaImage(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDescribeDatabase(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{visualizer: testVisualizer(t, &stubGenerator{})}
	handler := NewVisualizerHandler(provider, "/plots")

	req := httptest.NewRequest(http.MethodGet, "/api/describe", nil)
	rec := httptest.NewRecorder()
	handler.DescribeDatabase(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp DescribeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, "orders", resp.Stats[0].Table)
	assert.Equal(t, "total", resp.Stats[0].Column)
}

func TestAskQuestion(t *testing.T) {
	t.Parallel()

	t.Run("chart answer", func(t *testing.T) {
		t.Parallel()

		provider := &stubProvider{visualizer: testVisualizer(t, &stubGenerator{})}
		handler := NewVisualizerHandler(provider, "/plots")

		body := `{"question":"total sales per region?"}`
		req := httptest.NewRequest(http.MethodPost, "/api/question", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.AskQuestion(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp QuestionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{"region", "total"}, resp.Columns)
		require.Len(t, resp.Rows, 1)
		assert.True(t, resp.ShouldPlot)
		assert.Equal(t, "/plots/chart-abc.html", resp.ChartURL)
	})

	t.Run("empty question", func(t *testing.T) {
		t.Parallel()

		provider := &stubProvider{visualizer: testVisualizer(t, &stubGenerator{})}
		handler := NewVisualizerHandler(provider, "/plots")

		req := httptest.NewRequest(http.MethodPost, "/api/question", strings.NewReader(`{"question":""}`))
		rec := httptest.NewRecorder()
		handler.AskQuestion(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown model", func(t *testing.T) {
		t.Parallel()

		gen := &stubGenerator{err: fmt.Errorf("model missing: %w", generation.ErrModelNotFound)}
		provider := &stubProvider{visualizer: testVisualizer(t, gen)}
		handler := NewVisualizerHandler(provider, "/plots")

		req := httptest.NewRequest(http.MethodPost, "/api/question",
			strings.NewReader(`{"question":"total sales?"}`))
		rec := httptest.NewRecorder()
		handler.AskQuestion(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("retry budget exhausted", func(t *testing.T) {
		t.Parallel()

		gen := &stubGenerator{err: fmt.Errorf("giving up: %w", generation.ErrSourceExhausted)}
		provider := &stubProvider{visualizer: testVisualizer(t, gen)}
		handler := NewVisualizerHandler(provider, "/plots")

		req := httptest.NewRequest(http.MethodPost, "/api/question",
			strings.NewReader(`{"question":"total sales?"}`))
		rec := httptest.NewRecorder()
		handler.AskQuestion(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestRandomQuestions(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{visualizer: testVisualizer(t, &stubGenerator{})}
	handler := NewVisualizerHandler(provider, "/plots")

	req := httptest.NewRequest(http.MethodGet, "/api/random-questions?count=2", nil)
	rec := httptest.NewRecorder()
	handler.RandomQuestions(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RandomQuestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{
		"How many orders are there?",
		"Which region sells most?",
	}, resp.Questions)
}
