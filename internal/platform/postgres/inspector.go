package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mstolarz/vizquery/internal/domain"
	"github.com/mstolarz/vizquery/internal/store"
)

// numericDataTypes lists the PostgreSQL column types that get numeric
// statistics (count/min/mean/max); everything else is treated as
// categorical (count/unique/top/freq).
var numericDataTypes = map[string]bool{
	"smallint":         true,
	"integer":          true,
	"bigint":           true,
	"real":             true,
	"double precision": true,
	"numeric":          true,
	"decimal":          true,
}

// identifierPattern restricts table and column names before they are
// interpolated into catalog queries. Catalog names cannot be bound as query
// parameters, so anything outside this shape is rejected outright.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Inspector implements the store.Inspector interface using a PostgreSQL
// database as the introspection target.
type Inspector struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Inspector implements store.Inspector interface
var _ store.Inspector = (*Inspector)(nil)

// NewInspector creates a PostgreSQL implementation of the store.Inspector
// interface. It accepts a database connection that should be initialized
// and managed by the caller.
func NewInspector(db *sql.DB, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		db:     db,
		logger: logger,
	}
}

// Close releases the underlying connection pool.
func (s *Inspector) Close() error {
	return s.db.Close()
}

// ExecuteQuery runs an arbitrary SQL query and returns the result as a
// column-ordered dataset. Any execution failure wraps store.ErrQueryFailed.
func (s *Inspector) ExecuteQuery(ctx context.Context, query string) (*domain.Dataset, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrQueryFailed, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.WarnContext(ctx, "failed to close result rows", "error", cerr)
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrQueryFailed, err)
	}

	dataset := domain.NewDataset(columns)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrQueryFailed, err)
		}
		for i, v := range values {
			// Drivers hand text columns back as []byte; datasets carry strings.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		if err := dataset.AppendRow(values); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrQueryFailed, err)
	}

	s.logger.DebugContext(ctx, "query executed",
		"rows", len(dataset.Rows),
		"columns", len(dataset.Columns))
	return dataset, nil
}

// ListTables returns the names of user-defined tables in the public schema.
func (s *Inspector) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, MapError(err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ColumnInfo returns name and declared type for each column of the table,
// in ordinal order.
func (s *Inspector) ColumnInfo(ctx context.Context, table string) ([]domain.Column, error) {
	const query = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var columns []domain.Column
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.Name, &col.DeclaredType); err != nil {
			return nil, MapError(err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, table)
	}
	return columns, nil
}

// ExportSchema reconstructs CREATE TABLE statements for every user table
// from the information schema. The DDL is descriptive, intended as LLM
// prompt context rather than as runnable migration input.
func (s *Inspector) ExportSchema(ctx context.Context) (string, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return "", err
	}

	statements := make([]string, 0, len(tables))
	for _, table := range tables {
		columns, nullable, err := s.columnDetails(ctx, table)
		if err != nil {
			return "", err
		}
		statements = append(statements, buildCreateTable(table, columns, nullable))
	}
	return strings.Join(statements, "\n"), nil
}

// columnDetails fetches columns plus nullability for DDL reconstruction.
func (s *Inspector) columnDetails(ctx context.Context, table string) ([]domain.Column, []bool, error) {
	const query = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var columns []domain.Column
	var nullable []bool
	for rows.Next() {
		var col domain.Column
		var isNullable string
		if err := rows.Scan(&col.Name, &col.DeclaredType, &isNullable); err != nil {
			return nil, nil, MapError(err)
		}
		columns = append(columns, col)
		nullable = append(nullable, isNullable == "YES")
	}
	return columns, nullable, rows.Err()
}

// buildCreateTable renders one CREATE TABLE statement from column metadata.
func buildCreateTable(table string, columns []domain.Column, nullable []bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", table)
	for i, col := range columns {
		fmt.Fprintf(&b, "    %s %s", col.Name, col.DeclaredType)
		if i < len(nullable) && !nullable[i] {
			b.WriteString(" NOT NULL")
		}
		if i < len(columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")
	return b.String()
}

// DescribeTable computes per-column statistics for one table. Numeric
// columns get count/min/mean/max; everything else gets count/unique/top/freq.
func (s *Inspector) DescribeTable(ctx context.Context, table string) ([]domain.ColumnStats, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidIdentifier, table)
	}

	columns, err := s.ColumnInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	stats := make([]domain.ColumnStats, 0, len(columns))
	for _, col := range columns {
		if !identifierPattern.MatchString(col.Name) {
			return nil, fmt.Errorf("%w: %q", store.ErrInvalidIdentifier, col.Name)
		}

		var cs domain.ColumnStats
		if numericDataTypes[strings.ToLower(col.DeclaredType)] {
			cs, err = s.numericColumnStats(ctx, table, col)
		} else {
			cs, err = s.categoricalColumnStats(ctx, table, col)
		}
		if err != nil {
			return nil, err
		}
		stats = append(stats, cs)
	}
	return stats, nil
}

// DescribeDatabase computes per-column statistics for every user table.
func (s *Inspector) DescribeDatabase(ctx context.Context) ([]domain.ColumnStats, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var all []domain.ColumnStats
	for _, table := range tables {
		stats, err := s.DescribeTable(ctx, table)
		if err != nil {
			return nil, err
		}
		all = append(all, stats...)
	}
	return all, nil
}

func (s *Inspector) numericColumnStats(ctx context.Context, table string, col domain.Column) (domain.ColumnStats, error) {
	qtable := pgx.Identifier{table}.Sanitize()
	qcol := pgx.Identifier{col.Name}.Sanitize()

	query := fmt.Sprintf(`
		SELECT COUNT(%[1]s), MIN(%[1]s)::float8, AVG(%[1]s)::float8, MAX(%[1]s)::float8
		FROM %[2]s`, qcol, qtable)

	var count int64
	var minVal, meanVal, maxVal sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query).Scan(&count, &minVal, &meanVal, &maxVal); err != nil {
		return domain.ColumnStats{}, MapError(err)
	}

	cs := domain.ColumnStats{
		Table:        table,
		Column:       col.Name,
		DeclaredType: col.DeclaredType,
		Count:        count,
	}
	if minVal.Valid {
		cs.Min = &minVal.Float64
	}
	if meanVal.Valid {
		cs.Mean = &meanVal.Float64
	}
	if maxVal.Valid {
		cs.Max = &maxVal.Float64
	}
	return cs, nil
}

func (s *Inspector) categoricalColumnStats(ctx context.Context, table string, col domain.Column) (domain.ColumnStats, error) {
	qtable := pgx.Identifier{table}.Sanitize()
	qcol := pgx.Identifier{col.Name}.Sanitize()

	query := fmt.Sprintf(`
		SELECT COUNT(%[1]s), COUNT(DISTINCT %[1]s),
			(SELECT %[1]s::text FROM %[2]s WHERE %[1]s IS NOT NULL
			 GROUP BY %[1]s ORDER BY COUNT(*) DESC LIMIT 1),
			(SELECT COUNT(*) FROM %[2]s WHERE %[1]s IS NOT NULL
			 GROUP BY %[1]s ORDER BY COUNT(*) DESC LIMIT 1)
		FROM %[2]s`, qcol, qtable)

	var count int64
	var unique sql.NullInt64
	var top sql.NullString
	var freq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query).Scan(&count, &unique, &top, &freq); err != nil {
		return domain.ColumnStats{}, MapError(err)
	}

	cs := domain.ColumnStats{
		Table:        table,
		Column:       col.Name,
		DeclaredType: col.DeclaredType,
		Count:        count,
	}
	if unique.Valid {
		cs.Unique = &unique.Int64
	}
	if top.Valid {
		cs.Top = &top.String
	}
	if freq.Valid {
		cs.Freq = &freq.Int64
	}
	return cs, nil
}
