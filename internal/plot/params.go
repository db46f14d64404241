package plot

import (
	"encoding/json"
	"fmt"
)

// columnList accepts either a single column name or a list of names, since
// the model emits both shapes for the "y" parameter.
type columnList []string

func (c *columnList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = columnList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("y must be a string or a list of strings: %w", err)
	}
	*c = columnList(many)
	return nil
}

// Params is the flat plot-parameter object requested from the language
// model. Unknown keys are ignored; the model is prompted to only emit keys
// it considers relevant.
type Params struct {
	Kind       string     `json:"kind"`
	X          string     `json:"x"`
	Y          columnList `json:"y"`
	Title      string     `json:"title"`
	Stacked    bool       `json:"stacked"`
	Subplots   bool       `json:"subplots"`
	Legend     bool       `json:"legend"`
	LogY       bool       `json:"logy"`
	ShouldPlot bool       `json:"should_plot"`
}

// ParseParams decodes the model's JSON plot parameters. On malformed input
// it returns zero Params (ShouldPlot false) along with the error: callers
// degrade to the table fallback rather than propagating a parse failure up
// the request path.
func ParseParams(jsonText string) (Params, error) {
	var p Params
	if err := json.Unmarshal([]byte(jsonText), &p); err != nil {
		return Params{}, fmt.Errorf("failed to decode plot parameters: %w", err)
	}
	if p.Kind == "" {
		p.Kind = "line"
	}
	return p, nil
}
