// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts external clients to the visualizer
// service, translating HTTP concerns to question, schema, and settings
// operations.
package api
