package plot

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstolarz/vizquery/internal/domain"
)

func schemaTables() []SchemaTable {
	return []SchemaTable{
		{
			Name: "orders",
			Columns: []domain.Column{
				{Name: "region", DeclaredType: "text"},
				{Name: "total", DeclaredType: "bigint"},
			},
		},
		{
			Name: "customers",
			Columns: []domain.Column{
				{Name: "name", DeclaredType: "text"},
			},
		},
	}
}

func TestEngineRenderSchema(t *testing.T) {
	t.Parallel()

	handle, err := newTestEngine().RenderSchema(schemaTables())
	require.NoError(t, err)
	assert.False(t, handle.Empty())
	assert.False(t, handle.Multiple())
	assert.Len(t, handle.Charts(), 1)
}

func TestEngineRenderSchema_NoTables(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine().RenderSchema(nil)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Contains(t, renderErr.Error(), "no tables")
}

func TestEngineRenderSchema_SavesAsPage(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	handle, err := engine.RenderSchema(schemaTables())
	require.NoError(t, err)

	path, err := engine.SaveHTML(handle, t.TempDir())
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(content)
	assert.Contains(t, body, "echarts")
	assert.Contains(t, body, "orders.total: bigint")
	assert.True(t, strings.HasSuffix(path, ".html"))
}

func TestColumnNodeLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "orders.total: bigint",
		columnNodeLabel("orders", domain.Column{Name: "total", DeclaredType: "bigint"}))
	assert.Equal(t, "orders.total",
		columnNodeLabel("orders", domain.Column{Name: "total"}))
}
