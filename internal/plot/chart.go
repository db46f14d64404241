package plot

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/components"
)

// ChartHandle is a tagged variant over "one chart" and "several charts"
// (subplot rendering). The tag makes figure-handling code exhaustive
// instead of probing the runtime type of a loose value.
type ChartHandle struct {
	charts   []components.Charter
	multiple bool
}

// SingleChart wraps one chart.
func SingleChart(c components.Charter) ChartHandle {
	return ChartHandle{charts: []components.Charter{c}}
}

// MultipleCharts wraps a set of subplot charts.
func MultipleCharts(cs []components.Charter) ChartHandle {
	return ChartHandle{charts: cs, multiple: true}
}

// Charts returns the wrapped charts in render order.
func (h ChartHandle) Charts() []components.Charter {
	return h.charts
}

// Multiple reports whether the handle carries subplot charts.
func (h ChartHandle) Multiple() bool {
	return h.multiple
}

// Empty reports whether the handle carries no charts at all.
func (h ChartHandle) Empty() bool {
	return len(h.charts) == 0
}

// RenderError describes why a dataset could not be charted. It is an
// ordinary error value: the caller inspects it to choose the table
// fallback, no panic-and-recover involved.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chart rendering failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("chart rendering failed: %s", e.Reason)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Decision says how a question's result should be presented.
type Decision int

const (
	// DecisionChart presents the rendered chart.
	DecisionChart Decision = iota
	// DecisionTable presents the raw rows as a table.
	DecisionTable
)

// Decide maps the model's should_plot flag and the rendering outcome to a
// presentation decision. Any render failure, and any explicit "do not plot"
// from the model, falls back to the table.
func Decide(shouldPlot bool, renderErr error) Decision {
	if !shouldPlot || renderErr != nil {
		return DecisionTable
	}
	return DecisionChart
}
