// Package domain contains the core value objects of the application:
// query result datasets and per-column statistics. It is independent of
// any specific database driver or delivery mechanism.
package domain
