// Package store defines interfaces for database access operations.
// These interfaces abstract the underlying database driver from the
// application's core logic, allowing the question-to-plot pipeline to remain
// independent of specific database technologies or introspection details.
package store
