// Package service contains the application use cases. The Visualizer
// orchestrates the question-to-plot pipeline: it asks the generator for a
// SQL query, executes it through the store inspector, retries failing
// queries with error feedback, and decides whether the result is charted
// or tabulated. The Provider owns the active Visualizer and swaps it when
// runtime settings change.
package service
