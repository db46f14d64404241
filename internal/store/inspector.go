package store

import (
	"context"

	"github.com/mstolarz/vizquery/internal/domain"
)

// Inspector defines the interface for introspecting and querying the target
// database. Implementations wrap a concrete driver; callers never see SQL
// dialect details beyond the DDL text returned by ExportSchema.
type Inspector interface {
	// ExecuteQuery runs an arbitrary SQL query and returns the result as a
	// column-ordered dataset. Execution failures are reported as
	// ErrQueryFailed (wrapped) so callers can decide to regenerate the SQL.
	ExecuteQuery(ctx context.Context, query string) (*domain.Dataset, error)

	// ListTables returns the names of user-defined tables.
	ListTables(ctx context.Context) ([]string, error)

	// ColumnInfo returns name and declared type for each column of a table.
	ColumnInfo(ctx context.Context, table string) ([]domain.Column, error)

	// ExportSchema returns the CREATE TABLE statements for the database.
	ExportSchema(ctx context.Context) (string, error)

	// DescribeTable computes per-column statistics for one table.
	DescribeTable(ctx context.Context, table string) ([]domain.ColumnStats, error)

	// DescribeDatabase computes per-column statistics for every user table.
	DescribeDatabase(ctx context.Context) ([]domain.ColumnStats, error)

	// Close releases the underlying connection pool.
	Close() error
}
