// Package gemini provides an implementation of the generation.Generator
// interface that uses Google's Gemini API for turning prompts into text.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's core to Google's external Gemini AI service.
// It translates between the application's error taxonomy and the Gemini API
// without exposing the details of the external service to the core.
//
// Key components:
//
// 1. Retrier:
//   - Wraps a single model invocation in a bounded retry loop
//   - Classifies provider failures into client, server, and transport classes
//   - Sizes the backoff per class, honoring provider retry-delay hints
//
// 2. GeminiGenerator:
//   - Implements the generation.Generator interface
//   - Handles communication with the Gemini API through the Retrier
//   - Resets the retry budget before each logical call
//
// The package depends on Google's google.golang.org/genai client library for
// communicating with the Gemini API, and handles authentication, request
// formatting, and error classification according to Google's API
// specifications.
package gemini
