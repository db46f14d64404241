package generation

import "context"

// Generator defines the interface for turning a prompt into model-generated
// text. This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Generator interface {
	// GenerateContent sends the prompt to the language model and returns the
	// raw text response. retryCount bounds the number of additional attempts
	// made after the initial one; each call owns an independent retry budget.
	// A negative retryCount selects the implementation's configured default.
	//
	// Returns ErrSourceExhausted (wrapped) once the budget is consumed on
	// retryable failures, ErrModelNotFound immediately on an unknown model,
	// and propagates any other fatal error without retrying.
	GenerateContent(ctx context.Context, prompt string, retryCount int) (string, error)
}
