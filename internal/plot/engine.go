package plot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/mstolarz/vizquery/internal/domain"
)

// Engine renders datasets into go-echarts charts.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a chart rendering engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Render builds a chart handle for the dataset according to the parameters.
// A failure to chart (empty data, unknown columns, no numeric series, an
// unsupported kind) is an explicit *RenderError, which callers map to a
// table fallback via Decide.
func (e *Engine) Render(ds *domain.Dataset, p Params) (ChartHandle, error) {
	if ds.Empty() {
		return ChartHandle{}, &RenderError{Reason: "dataset has no rows"}
	}

	xIdx := 0
	if p.X != "" {
		xIdx = ds.ColumnIndex(p.X)
		if xIdx < 0 {
			return ChartHandle{}, &RenderError{Reason: fmt.Sprintf("x column %q not found", p.X)}
		}
	}

	series := e.collectSeries(ds, p, xIdx)
	if len(series) == 0 {
		return ChartHandle{}, &RenderError{Reason: "no numeric columns to plot"}
	}

	labels := xLabels(ds, xIdx)

	if p.Kind == "pie" {
		// Pie charts use a single series; extra y columns are ignored.
		return SingleChart(e.buildPie(labels, series[0], p)), nil
	}

	if p.Subplots && len(series) > 1 {
		subplots := make([]components.Charter, 0, len(series))
		for _, s := range series {
			chart, err := e.buildChart(labels, []namedSeries{s}, p)
			if err != nil {
				return ChartHandle{}, err
			}
			subplots = append(subplots, chart)
		}
		return MultipleCharts(subplots), nil
	}

	chart, err := e.buildChart(labels, series, p)
	if err != nil {
		return ChartHandle{}, err
	}
	return SingleChart(chart), nil
}

// SaveHTML writes the charts of a handle into a uuid-named HTML page under
// dir and returns the file path.
func (e *Engine) SaveHTML(handle ChartHandle, dir string) (string, error) {
	if handle.Empty() {
		return "", &RenderError{Reason: "no charts to save"}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plots directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("chart-%s.html", uuid.New().String()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("failed to close chart file", "path", path, "error", cerr)
		}
	}()

	page := components.NewPage()
	page.AddCharts(handle.Charts()...)
	if err := page.Render(f); err != nil {
		return "", fmt.Errorf("failed to render chart page: %w", err)
	}

	e.logger.Debug("chart page written", "path", path, "charts", len(handle.Charts()))
	return path, nil
}

// namedSeries is one y column converted to float values, row-aligned with
// the x labels.
type namedSeries struct {
	name   string
	values []float64
}

// collectSeries picks the y columns and converts them to numbers. With no
// explicit y parameter every convertible column except x is used.
func (e *Engine) collectSeries(ds *domain.Dataset, p Params, xIdx int) []namedSeries {
	indices := make([]int, 0, len(ds.Columns))
	if len(p.Y) > 0 {
		for _, name := range p.Y {
			if idx := ds.ColumnIndex(name); idx >= 0 && idx != xIdx {
				indices = append(indices, idx)
			}
		}
	} else {
		for idx := range ds.Columns {
			if idx != xIdx {
				indices = append(indices, idx)
			}
		}
	}

	series := make([]namedSeries, 0, len(indices))
	for _, idx := range indices {
		values, ok := columnValues(ds, idx)
		if !ok {
			e.logger.Debug("skipping non-numeric column", "column", ds.Columns[idx])
			continue
		}
		series = append(series, namedSeries{name: ds.Columns[idx], values: values})
	}
	return series
}

func (e *Engine) buildChart(labels []string, series []namedSeries, p Params) (components.Charter, error) {
	switch p.Kind {
	case "bar", "barh":
		return e.buildBar(labels, series, p), nil
	case "line", "area", "":
		return e.buildLine(labels, series, p), nil
	case "scatter":
		return e.buildScatter(labels, series, p), nil
	default:
		return nil, &RenderError{Reason: fmt.Sprintf("unsupported chart kind %q", p.Kind)}
	}
}

func (e *Engine) globalOpts(p Params) []charts.GlobalOpts {
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: p.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(p.Legend)}),
	}
	if p.LogY {
		global = append(global, charts.WithYAxisOpts(opts.YAxis{Type: "log"}))
	}
	return global
}

func (e *Engine) buildBar(labels []string, series []namedSeries, p Params) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(e.globalOpts(p)...)
	bar.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.BarData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.BarData{Value: v}
		}
		if p.Stacked {
			bar.AddSeries(s.name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		} else {
			bar.AddSeries(s.name, data)
		}
	}
	return bar
}

func (e *Engine) buildLine(labels []string, series []namedSeries, p Params) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(e.globalOpts(p)...)
	line.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.LineData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.name, data)
	}
	return line
}

func (e *Engine) buildScatter(labels []string, series []namedSeries, p Params) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(e.globalOpts(p)...)
	scatter.SetXAxis(labels)
	for _, s := range series {
		data := make([]opts.ScatterData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.ScatterData{Value: v}
		}
		scatter.AddSeries(s.name, data)
	}
	return scatter
}

func (e *Engine) buildPie(labels []string, s namedSeries, p Params) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(e.globalOpts(p)...)
	data := make([]opts.PieData, len(s.values))
	for i, v := range s.values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		data[i] = opts.PieData{Name: label, Value: v}
	}
	pie.AddSeries(s.name, data)
	return pie
}

// xLabels renders the x column as strings for the category axis.
func xLabels(ds *domain.Dataset, xIdx int) []string {
	labels := make([]string, len(ds.Rows))
	for i, row := range ds.Rows {
		if xIdx < len(row) && row[xIdx] != nil {
			labels[i] = fmt.Sprintf("%v", row[xIdx])
		}
	}
	return labels
}

// columnValues converts one column to floats. A column qualifies only if
// every non-nil cell is numeric; nil cells render as zero.
func columnValues(ds *domain.Dataset, idx int) ([]float64, bool) {
	values := make([]float64, len(ds.Rows))
	for i, row := range ds.Rows {
		if idx >= len(row) || row[idx] == nil {
			continue
		}
		f, ok := toFloat(row[idx])
		if !ok {
			return nil, false
		}
		values[i] = f
	}
	return values, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
