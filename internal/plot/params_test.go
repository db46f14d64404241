package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Params
	}{
		{
			name:  "full parameters with y list",
			input: `{"kind":"bar","x":"region","y":["sales","profit"],"title":"Sales by region","stacked":true,"legend":true,"should_plot":true}`,
			want: Params{
				Kind:       "bar",
				X:          "region",
				Y:          columnList{"sales", "profit"},
				Title:      "Sales by region",
				Stacked:    true,
				Legend:     true,
				ShouldPlot: true,
			},
		},
		{
			name:  "y given as a single string",
			input: `{"kind":"line","x":"month","y":"revenue","should_plot":true}`,
			want: Params{
				Kind:       "line",
				X:          "month",
				Y:          columnList{"revenue"},
				ShouldPlot: true,
			},
		},
		{
			name:  "kind defaults to line",
			input: `{"x":"day","should_plot":true}`,
			want: Params{
				Kind:       "line",
				X:          "day",
				ShouldPlot: true,
			},
		},
		{
			name:  "should_plot false",
			input: `{"should_plot":false}`,
			want: Params{
				Kind: "line",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseParams(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseParams_MalformedJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "not json at all", input: "a bar chart of sales"},
		{name: "truncated object", input: `{"kind":"bar",`},
		{name: "empty string", input: ""},
		{name: "y with mixed types", input: `{"y":[1,2]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseParams(tc.input)
			assert.Error(t, err)
			assert.Equal(t, Params{}, got, "malformed input must yield zero params")
			assert.False(t, got.ShouldPlot)
		})
	}
}
