package domain

// ColumnStats holds the statistical description of one column of one table.
// Numeric columns populate Count/Min/Mean/Max; categorical columns populate
// Count/Unique/Top/Freq. Fields that do not apply to the column kind are nil.
type ColumnStats struct {
	Table        string   `json:"table"`
	Column       string   `json:"column"`
	DeclaredType string   `json:"dtype"`
	Count        int64    `json:"count"`
	Min          *float64 `json:"min,omitempty"`
	Mean         *float64 `json:"mean,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Unique       *int64   `json:"unique,omitempty"`
	Top          *string  `json:"top,omitempty"`
	Freq         *int64   `json:"freq,omitempty"`
}
