package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrSourceExhausted is returned when the retry budget for a generation
	// call reaches zero on a retryable failure. It is distinct from the
	// underlying provider error so callers can tell "ran out of retries"
	// apart from "got a fatal error immediately".
	ErrSourceExhausted = errors.New("generation source exhausted: all retries consumed")

	// ErrModelNotFound is returned when the provider reports that the
	// configured model identifier does not exist (404). Never retried.
	ErrModelNotFound = errors.New("language model not found, check model name")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed
	// or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// ClientError represents a client-side provider failure (HTTP 4xx): quota
// exhaustion, bad request, unknown model. RetryDelay carries the provider's
// structured retry hint verbatim when present (e.g. "3.42s"), empty otherwise.
type ClientError struct {
	Code       int
	Status     string
	RetryDelay string
}

func (e *ClientError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("provider client error: %d %s", e.Code, e.Status)
	}
	return fmt.Sprintf("provider client error: %d", e.Code)
}

// ServerError represents a provider-side failure (HTTP 5xx). Always
// considered transient.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("provider server error: %s", e.Message)
}

// TransportError represents a network-level failure before any provider
// response was received.
type TransportError struct {
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider transport error: %s", e.Message)
}
