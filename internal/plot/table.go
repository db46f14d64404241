package plot

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/mstolarz/vizquery/internal/domain"
)

// WriteTable renders the dataset as an ASCII table. It is the fallback
// presentation when a chart cannot or should not be drawn.
func WriteTable(w io.Writer, ds *domain.Dataset) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(ds.Columns)
	table.SetAutoWrapText(false)
	for _, row := range ds.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = formatCell(cell)
		}
		table.Append(cells)
	}
	table.Render()
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
