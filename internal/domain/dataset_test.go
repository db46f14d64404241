package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetAppendRow(t *testing.T) {
	t.Parallel()

	ds := NewDataset([]string{"region", "total"})
	require.True(t, ds.Empty())

	require.NoError(t, ds.AppendRow([]any{"north", int64(10)}))
	require.False(t, ds.Empty())

	err := ds.AppendRow([]any{"south"})
	assert.ErrorIs(t, err, ErrColumnCountSkew)

	rows, cols := ds.Shape()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, cols)
}

func TestDatasetColumnIndex(t *testing.T) {
	t.Parallel()

	ds := NewDataset([]string{"Region", "total"})

	assert.Equal(t, 0, ds.ColumnIndex("region"))
	assert.Equal(t, 1, ds.ColumnIndex("TOTAL"))
	assert.Equal(t, -1, ds.ColumnIndex("profit"))
}

func TestDatasetCell(t *testing.T) {
	t.Parallel()

	ds := NewDataset([]string{"region", "total"})
	require.NoError(t, ds.AppendRow([]any{"north", int64(10)}))

	assert.Equal(t, "north", ds.Cell(0, 0))
	assert.Equal(t, int64(10), ds.Cell(0, 1))
	assert.Nil(t, ds.Cell(1, 0))
	assert.Nil(t, ds.Cell(0, 5))
}

func TestDatasetHead(t *testing.T) {
	t.Parallel()

	ds := NewDataset([]string{"n"})
	for i := 0; i < 10; i++ {
		require.NoError(t, ds.AppendRow([]any{int64(i)}))
	}

	head := ds.Head(3)
	rows, _ := head.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, ds.Columns, head.Columns)

	all := ds.Head(50)
	rows, _ = all.Shape()
	assert.Equal(t, 10, rows)
}
