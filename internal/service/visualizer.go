package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mstolarz/vizquery/internal/domain"
	"github.com/mstolarz/vizquery/internal/generation"
	"github.com/mstolarz/vizquery/internal/plot"
	"github.com/mstolarz/vizquery/internal/store"
)

// maxLoggedSQLLength caps generated SQL in log output.
const maxLoggedSQLLength = 200

// sqlFencePattern matches the language tag of the code fence the model
// wraps generated queries in. Some models answer with ```sqlite even when
// asked for plain SQL.
const sqlFencePattern = "sql(ite)?"

// VisualizerError is a custom error type for visualizer failures.
type VisualizerError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for VisualizerError.
func (e *VisualizerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("visualizer %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("visualizer %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *VisualizerError) Unwrap() error {
	return e.Err
}

// NewVisualizerError creates a new VisualizerError.
func NewVisualizerError(operation, message string, err error) *VisualizerError {
	return &VisualizerError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ChartEngine renders datasets into charts and persists them as HTML pages.
type ChartEngine interface {
	Render(ds *domain.Dataset, p plot.Params) (plot.ChartHandle, error)
	RenderSchema(tables []plot.SchemaTable) (plot.ChartHandle, error)
	SaveHTML(handle plot.ChartHandle, dir string) (string, error)
}

// PlotResult is the outcome of answering a question with a chart attempt.
// When Decision is DecisionTable the dataset should be presented as rows
// and ChartPath is empty.
type PlotResult struct {
	Decision  plot.Decision
	ChartPath string
	Params    plot.Params
	Dataset   *domain.Dataset
}

// Visualizer answers natural-language questions about a database by
// generating SQL with an LLM, executing it, and deciding how to present
// the result.
type Visualizer struct {
	logger         *slog.Logger
	inspector      store.Inspector
	generator      generation.Generator
	engine         ChartEngine
	maxSQLAttempts int
	plotDir        string
}

// NewVisualizer creates a Visualizer with the given collaborators.
// maxSQLAttempts bounds how many times a failing query is regenerated
// before the failure is surfaced.
func NewVisualizer(
	logger *slog.Logger,
	inspector store.Inspector,
	generator generation.Generator,
	engine ChartEngine,
	maxSQLAttempts int,
	plotDir string,
) (*Visualizer, error) {
	if inspector == nil {
		return nil, NewVisualizerError("initialization", "inspector is required", nil)
	}
	if generator == nil {
		return nil, NewVisualizerError("initialization", "generator is required", nil)
	}
	if engine == nil {
		return nil, NewVisualizerError("initialization", "chart engine is required", nil)
	}
	if maxSQLAttempts < 1 {
		return nil, NewVisualizerError("initialization",
			fmt.Sprintf("maxSQLAttempts must be at least 1, got %d", maxSQLAttempts), nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Visualizer{
		logger:         logger,
		inspector:      inspector,
		generator:      generator,
		engine:         engine,
		maxSQLAttempts: maxSQLAttempts,
		plotDir:        plotDir,
	}, nil
}

// GenerateSQL produces a SQL query answering the question against the
// connected database's schema.
func (v *Visualizer) GenerateSQL(ctx context.Context, question string) (string, error) {
	schema, err := v.inspector.ExportSchema(ctx)
	if err != nil {
		return "", NewVisualizerError("sql generation", "could not export schema", err)
	}

	raw, err := v.generator.GenerateContent(ctx, buildSQLPrompt(schema, question), -1)
	if err != nil {
		return "", NewVisualizerError("sql generation", "model call failed", err)
	}

	query := generation.ExtractCodeBlock(raw, sqlFencePattern)
	v.logger.Info("generated sql", "question", question, "sql", truncateSQL(query))
	return query, nil
}

// QuestionToDataset turns a question into rows. When the generated query
// fails to execute, the error text is fed back to the model and the query
// regenerated, up to the configured attempt budget.
func (v *Visualizer) QuestionToDataset(ctx context.Context, question string) (*domain.Dataset, error) {
	query, err := v.GenerateSQL(ctx, question)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= v.maxSQLAttempts; attempt++ {
		ds, execErr := v.inspector.ExecuteQuery(ctx, query)
		if execErr == nil {
			return ds, nil
		}
		if !store.IsQueryFailure(execErr) {
			return nil, NewVisualizerError("question", "query execution failed", execErr)
		}

		lastErr = execErr
		v.logger.Warn("generated query failed, regenerating",
			"attempt", attempt,
			"max_attempts", v.maxSQLAttempts,
			"sql", truncateSQL(query),
			"error", execErr)

		if attempt == v.maxSQLAttempts {
			break
		}

		schema, schemaErr := v.inspector.ExportSchema(ctx)
		if schemaErr != nil {
			return nil, NewVisualizerError("question", "could not export schema", schemaErr)
		}
		raw, genErr := v.generator.GenerateContent(ctx,
			buildRetrySQLPrompt(schema, question, query, execErr), -1)
		if genErr != nil {
			return nil, NewVisualizerError("question", "model call failed", genErr)
		}
		query = generation.ExtractCodeBlock(raw, sqlFencePattern)
		v.logger.Info("regenerated sql", "attempt", attempt+1, "sql", truncateSQL(query))
	}

	return nil, NewVisualizerError("question",
		fmt.Sprintf("query still failing after %d attempts", v.maxSQLAttempts), lastErr)
}

// QuestionToPlot answers a question and attempts to chart the result. The
// model decides whether a chart is appropriate; a malformed decision or a
// rendering failure downgrades the result to a table without failing the
// request.
func (v *Visualizer) QuestionToPlot(ctx context.Context, question string) (*PlotResult, error) {
	ds, err := v.QuestionToDataset(ctx, question)
	if err != nil {
		return nil, err
	}

	raw, err := v.generator.GenerateContent(ctx, buildPlotPrompt(question, ds), -1)
	if err != nil {
		return nil, NewVisualizerError("plot", "model call failed", err)
	}

	params, parseErr := plot.ParseParams(generation.ExtractCodeBlock(raw, "json"))
	if parseErr != nil {
		v.logger.Warn("model returned unusable plot parameters, falling back to table",
			"error", parseErr)
		return &PlotResult{Decision: plot.DecisionTable, Dataset: ds}, nil
	}

	var renderErr error
	var handle plot.ChartHandle
	if params.ShouldPlot {
		handle, renderErr = v.engine.Render(ds, params)
		if renderErr != nil {
			v.logger.Warn("chart rendering failed, falling back to table", "error", renderErr)
		}
	}

	result := &PlotResult{
		Decision: plot.Decide(params.ShouldPlot, renderErr),
		Params:   params,
		Dataset:  ds,
	}
	if result.Decision == plot.DecisionChart {
		path, saveErr := v.engine.SaveHTML(handle, v.plotDir)
		if saveErr != nil {
			v.logger.Warn("could not save chart, falling back to table", "error", saveErr)
			result.Decision = plot.DecisionTable
			return result, nil
		}
		result.ChartPath = path
	}
	return result, nil
}

// RandomQuestions asks the model for count example questions answerable
// from the current schema.
func (v *Visualizer) RandomQuestions(ctx context.Context, count int) ([]string, error) {
	if count < 1 {
		return nil, NewVisualizerError("random questions",
			fmt.Sprintf("count must be at least 1, got %d", count), nil)
	}

	schema, err := v.inspector.ExportSchema(ctx)
	if err != nil {
		return nil, NewVisualizerError("random questions", "could not export schema", err)
	}

	raw, err := v.generator.GenerateContent(ctx, buildQuestionsPrompt(schema, count), -1)
	if err != nil {
		return nil, NewVisualizerError("random questions", "model call failed", err)
	}

	questions := parseQuestionLines(raw)
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

// DescribeDatabase returns per-column statistics for every user table.
func (v *Visualizer) DescribeDatabase(ctx context.Context) ([]domain.ColumnStats, error) {
	stats, err := v.inspector.DescribeDatabase(ctx)
	if err != nil {
		return nil, NewVisualizerError("describe", "could not compute statistics", err)
	}
	return stats, nil
}

// SchemaImage renders a diagram of the tables and their columns, writes it
// as an HTML page under the plot directory, and returns the file path.
func (v *Visualizer) SchemaImage(ctx context.Context) (string, error) {
	tables, err := v.inspector.ListTables(ctx)
	if err != nil {
		return "", NewVisualizerError("schema image", "could not list tables", err)
	}

	diagram := make([]plot.SchemaTable, 0, len(tables))
	for _, name := range tables {
		columns, err := v.inspector.ColumnInfo(ctx, name)
		if err != nil {
			return "", NewVisualizerError("schema image",
				fmt.Sprintf("could not inspect table %s", name), err)
		}
		diagram = append(diagram, plot.SchemaTable{Name: name, Columns: columns})
	}

	handle, err := v.engine.RenderSchema(diagram)
	if err != nil {
		return "", NewVisualizerError("schema image", "could not render diagram", err)
	}

	path, err := v.engine.SaveHTML(handle, v.plotDir)
	if err != nil {
		return "", NewVisualizerError("schema image", "could not save diagram", err)
	}
	v.logger.Info("schema diagram written", "path", path, "tables", len(diagram))
	return path, nil
}

// ExportSchema returns the CREATE TABLE statements for the database.
func (v *Visualizer) ExportSchema(ctx context.Context) (string, error) {
	schema, err := v.inspector.ExportSchema(ctx)
	if err != nil {
		return "", NewVisualizerError("schema export", "could not export schema", err)
	}
	return schema, nil
}

// truncateSQL shortens SQL for log output.
func truncateSQL(query string) string {
	if len(query) <= maxLoggedSQLLength {
		return query
	}
	return query[:maxLoggedSQLLength] + "..."
}

// parseQuestionLines extracts one question per line, tolerating the list
// decorations models like to add.
func parseQuestionLines(raw string) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)")
		line = strings.TrimLeft(line, "-* ")
		line = strings.TrimSpace(line)
		if len(line) > 3 {
			questions = append(questions, line)
		}
	}
	return questions
}
