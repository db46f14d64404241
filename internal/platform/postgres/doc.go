// Package postgres provides the PostgreSQL implementation of the database
// introspection interface defined in the internal/store package. It handles
// the details of query execution, catalog lookups, schema DDL reconstruction,
// and statistical description of tables.
package postgres
