package plot

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mstolarz/vizquery/internal/domain"
)

// Node categories of the schema diagram.
const (
	tableCategory  = 0
	columnCategory = 1
)

// Symbol sizes for the two node kinds; tables render larger than columns.
const (
	tableSymbolSize  = 28
	columnSymbolSize = 12
)

// SchemaTable describes one table for the schema diagram.
type SchemaTable struct {
	Name    string
	Columns []domain.Column
}

// RenderSchema builds a force-directed graph of the database schema. Each
// table is a hub node linked to one node per column; column nodes carry the
// declared type in their label.
func (e *Engine) RenderSchema(tables []SchemaTable) (ChartHandle, error) {
	if len(tables) == 0 {
		return ChartHandle{}, &RenderError{Reason: "no tables to diagram"}
	}

	var nodes []opts.GraphNode
	var links []opts.GraphLink
	for _, t := range tables {
		nodes = append(nodes, opts.GraphNode{
			Name:       t.Name,
			Category:   tableCategory,
			SymbolSize: tableSymbolSize,
		})
		for _, c := range t.Columns {
			label := columnNodeLabel(t.Name, c)
			nodes = append(nodes, opts.GraphNode{
				Name:       label,
				Category:   columnCategory,
				SymbolSize: columnSymbolSize,
			})
			links = append(links, opts.GraphLink{Source: t.Name, Target: label})
		}
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Database schema"}),
	)
	graph.AddSeries("schema", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: "force",
			Force:  &opts.GraphForce{Repulsion: 400},
			Roam:   opts.Bool(true),
			Categories: []*opts.GraphCategory{
				{Name: "table"},
				{Name: "column"},
			},
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)

	e.logger.Debug("schema diagram built", "tables", len(tables), "nodes", len(nodes))
	return SingleChart(graph), nil
}

// columnNodeLabel qualifies the column with its table so node names stay
// unique across tables, and appends the declared type when known.
func columnNodeLabel(table string, c domain.Column) string {
	if c.DeclaredType == "" {
		return fmt.Sprintf("%s.%s", table, c.Name)
	}
	return fmt.Sprintf("%s.%s: %s", table, c.Name, c.DeclaredType)
}
