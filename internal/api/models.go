package api

// Common request/response structures

// SettingsRequest defines the payload for (re)configuring the database
// connection and the model used for generation.
type SettingsRequest struct {
	DatabaseURL  string `json:"database_url"  validate:"required,url"`
	DatabaseType string `json:"database_type" validate:"omitempty,oneof=postgres postgresql"`
	Model        string `json:"model"         validate:"omitempty,min=1"`
}

// SettingsResponse acknowledges a successful reconfiguration.
type SettingsResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// QuestionRequest defines the payload for asking a natural-language
// question about the connected database.
type QuestionRequest struct {
	Question string `json:"question" validate:"required,min=1"`
}

// QuestionResponse carries the query result and, when a chart was
// rendered, the URL it is served under.
type QuestionResponse struct {
	Question   string   `json:"question"`
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	ShouldPlot bool     `json:"should_plot"`
	ChartURL   string   `json:"chart_url,omitempty"`
}

// SchemaResponse carries the database DDL.
type SchemaResponse struct {
	Schema string `json:"schema"`
}

// ColumnStatsResponse is the JSON shape of per-column statistics. Numeric
// columns carry min/mean/max, categorical ones unique/top/freq.
type ColumnStatsResponse struct {
	Table  string   `json:"table"`
	Column string   `json:"column"`
	Type   string   `json:"type"`
	Count  int64    `json:"count"`
	Min    *float64 `json:"min,omitempty"`
	Mean   *float64 `json:"mean,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Unique *int64   `json:"unique,omitempty"`
	Top    *string  `json:"top,omitempty"`
	Freq   *int64   `json:"freq,omitempty"`
}

// DescribeResponse carries statistics for every user table.
type DescribeResponse struct {
	Stats []ColumnStatsResponse `json:"stats"`
}

// RandomQuestionsResponse carries model-suggested example questions.
type RandomQuestionsResponse struct {
	Questions []string `json:"questions"`
}
