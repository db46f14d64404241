// Package generation provides interfaces and the error taxonomy for
// interacting with external AI/LLM services for text generation. It abstracts
// the details of LLM API integration (Gemini), allowing the application to
// turn natural-language questions into SQL queries and plot parameters
// without coupling to a specific external provider.
package generation
