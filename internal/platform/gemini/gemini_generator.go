package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/mstolarz/vizquery/internal/config"
	"github.com/mstolarz/vizquery/internal/generation"
)

// retryInfoType identifies the google.rpc.RetryInfo detail in a quota error.
const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

// modelCaller is the seam between the generator and the genai client,
// allowing tests to substitute the provider.
type modelCaller interface {
	generate(ctx context.Context, model, prompt string) (string, error)
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API. Every call goes through the Retrier, which absorbs
// quota exhaustion and transient provider failures.
type GeminiGenerator struct {
	logger  *slog.Logger
	model   string
	caller  modelCaller
	retrier *Retrier
}

// Ensure GeminiGenerator implements the generation.Generator interface
var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a GeminiGenerator from the LLM configuration.
// It validates the configuration, builds the genai client, and wires the
// retry controller with the configured budget and backoff durations.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	retrier := NewRetrier(logger, cfg.MaxRetries,
		time.Duration(cfg.ClientWaitSeconds)*time.Second,
		time.Duration(cfg.ServerWaitSeconds)*time.Second)

	return &GeminiGenerator{
		logger:  logger,
		model:   cfg.ModelName,
		caller:  &genaiCaller{client: client},
		retrier: retrier,
	}, nil
}

// GenerateContent sends the prompt to the configured model and returns the
// raw text response.
//
// The retry budget is reset to retryCount before the call so that budgets
// never leak between unrelated prompts; a negative retryCount restores the
// configured default. Exhaustion surfaces as generation.ErrSourceExhausted
// rather than an empty string, so downstream parsers see a typed error
// instead of silently empty output.
func (g *GeminiGenerator) GenerateContent(ctx context.Context, prompt string, retryCount int) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	if retryCount < 0 {
		g.retrier.ResetRetries()
	} else {
		g.retrier.SetRetries(retryCount)
	}

	text, err := g.retrier.Run(ctx, func(ctx context.Context) (string, error) {
		return g.caller.generate(ctx, g.model, prompt)
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "generation call failed",
			"model", g.model,
			"error", err)
		return "", err
	}

	g.logger.DebugContext(ctx, "generation call succeeded",
		"model", g.model,
		"response_length", len(text))
	return text, nil
}

// genaiCaller adapts the genai client to the modelCaller seam and converts
// provider errors into the generation package's classification types.
type genaiCaller struct {
	client *genai.Client
}

func (c *genaiCaller) generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", classifyProviderError(err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	return resp.Text(), nil
}

// classifyProviderError maps a genai client error onto the generation
// package's failure taxonomy. Context cancellation passes through untouched
// so the retrier escalates it instead of retrying.
func classifyProviderError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return &generation.ClientError{
				Code:       apiErr.Code,
				Status:     apiErr.Status,
				RetryDelay: retryDelayHint(apiErr),
			}
		case apiErr.Code >= 500:
			return &generation.ServerError{Message: apiErr.Message}
		}
	}

	return &generation.TransportError{Message: err.Error()}
}

// retryDelayHint digs the structured retry delay out of a quota error's
// details, returning it verbatim (e.g. "3.42s") or "" when absent.
func retryDelayHint(apiErr genai.APIError) string {
	for _, detail := range apiErr.Details {
		if detail["@type"] != retryInfoType {
			continue
		}
		if delay, ok := detail["retryDelay"].(string); ok {
			return delay
		}
	}
	return ""
}
