package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common validation errors for Dataset
var (
	ErrEmptyQuery      = errors.New("query cannot be empty")
	ErrColumnCountSkew = errors.New("row length does not match column count")
)

// Column describes a single column of a database table as reported
// by the database catalog.
type Column struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
}

// Dataset is an ordered, column-oriented view of a query result.
// Rows hold values in the same order as Columns; a nil cell means SQL NULL.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewDataset creates a Dataset with the given column names and no rows.
func NewDataset(columns []string) *Dataset {
	return &Dataset{
		Columns: columns,
		Rows:    make([][]any, 0),
	}
}

// AppendRow adds a row to the dataset.
// Returns an error if the row length does not match the column count.
func (d *Dataset) AppendRow(row []any) error {
	if len(row) != len(d.Columns) {
		return fmt.Errorf("%w: got %d values for %d columns",
			ErrColumnCountSkew, len(row), len(d.Columns))
	}
	d.Rows = append(d.Rows, row)
	return nil
}

// Empty reports whether the dataset holds no rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Rows) == 0
}

// Shape returns the row and column counts of the dataset.
func (d *Dataset) Shape() (rows, cols int) {
	if d == nil {
		return 0, 0
	}
	return len(d.Rows), len(d.Columns)
}

// Cell returns the value at the given row and column index,
// or nil if either index is out of range.
func (d *Dataset) Cell(row, col int) any {
	if d == nil || row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Rows[row]) {
		return nil
	}
	return d.Rows[row][col]
}

// ColumnIndex returns the index of the named column, or -1 if absent.
// Matching is case-insensitive since SQL dialects fold identifiers.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Head returns a copy of the dataset truncated to at most n rows.
// The underlying row slices are shared with the receiver.
func (d *Dataset) Head(n int) *Dataset {
	if d == nil {
		return nil
	}
	if n < 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	return &Dataset{
		Columns: d.Columns,
		Rows:    d.Rows[:n],
	}
}
