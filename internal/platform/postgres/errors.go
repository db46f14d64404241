package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mstolarz/vizquery/internal/store"
)

// PostgreSQL error codes
const (
	// undefinedTableCode is the PostgreSQL error code for a missing table
	undefinedTableCode = "42P01"

	// undefinedColumnCode is the PostgreSQL error code for a missing column
	undefinedColumnCode = "42703"

	// syntaxErrorCode is the PostgreSQL error code for malformed SQL
	syntaxErrorCode = "42601"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context and provide better
// debugging information. Errors from LLM-generated SQL (missing tables,
// missing columns, syntax errors) map to store.ErrQueryFailed so callers
// know regenerating the query may help.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case undefinedTableCode:
			return fmt.Errorf("%w: undefined table: %v", store.ErrQueryFailed, err)
		case undefinedColumnCode:
			return fmt.Errorf("%w: undefined column: %v", store.ErrQueryFailed, err)
		case syntaxErrorCode:
			return fmt.Errorf("%w: syntax error: %v", store.ErrQueryFailed, err)
		}
	}

	// Return the original error for errors that don't have specific mappings
	return err
}
