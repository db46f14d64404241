package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// database, for example a table name that the catalog does not know.
	ErrNotFound = errors.New("entity not found")

	// ErrQueryFailed is returned when the database rejects a query. For
	// LLM-generated SQL this is an expected failure mode: callers may
	// regenerate the query and try again.
	ErrQueryFailed = errors.New("query execution failed")

	// ErrInvalidIdentifier is returned when a table or column name fails
	// identifier validation before being interpolated into catalog queries.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// Entity-specific "not found" errors

	// ErrTableNotFound indicates that the requested table does not exist.
	ErrTableNotFound = fmt.Errorf("%w: table", ErrNotFound)
)

// IsQueryFailure reports whether the error stems from a rejected query,
// which for generated SQL usually means the model should try again.
func IsQueryFailure(err error) bool {
	return errors.Is(err, ErrQueryFailed)
}
