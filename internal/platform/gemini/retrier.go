package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mstolarz/vizquery/internal/generation"
)

// Default retry parameters, matching the provider's free-tier quota windows.
const (
	defaultRetries    = 3
	defaultClientWait = 60 * time.Second
	defaultServerWait = 5 * time.Second

	// zeroHintWait is used when the provider sends a retry-delay hint of
	// exactly zero seconds. A literal zero wait would hammer a quota that
	// has not actually recovered, so it is stretched to a full minute.
	zeroHintWait = time.Minute
)

// retryDelayPattern matches provider retry hints such as "3s" or "3.42s".
var retryDelayPattern = regexp.MustCompile(`^(\d+)(\.\d+)?s$`)

// Retrier wraps a single model invocation in a bounded, blocking retry loop.
//
// Failures raised by the wrapped operation are classified into the
// generation package's client/server/transport error types; each class maps
// to a wait duration, and anything unclassified is treated as fatal and
// escalated immediately. The retry budget is owned by the in-flight Run call:
// a Retrier must not be shared by overlapping operations, and callers should
// reset the budget before each independent logical call.
type Retrier struct {
	logger          *slog.Logger
	retries         int
	originalRetries int
	clientWait      time.Duration
	serverWait      time.Duration

	// sleep is replaceable in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier with the given retry budget and per-class
// backoff durations. Non-positive durations and a negative budget fall back
// to the defaults.
func NewRetrier(logger *slog.Logger, retries int, clientWait, serverWait time.Duration) *Retrier {
	if logger == nil {
		logger = slog.Default()
	}
	if retries < 0 {
		retries = defaultRetries
	}
	if clientWait <= 0 {
		clientWait = defaultClientWait
	}
	if serverWait <= 0 {
		serverWait = defaultServerWait
	}

	r := &Retrier{
		logger:          logger,
		retries:         retries,
		originalRetries: retries,
		clientWait:      clientWait,
		serverWait:      serverWait,
	}
	r.sleep = r.sleepCoarse
	return r
}

// SetRetries sets the retry budget used by subsequent Run calls.
// Callers must set or reset the budget before each independent logical
// operation so that budget does not leak across unrelated requests.
func (r *Retrier) SetRetries(n int) {
	r.retries = n
}

// ResetRetries restores the retry budget configured at construction time.
func (r *Retrier) ResetRetries() {
	r.retries = r.originalRetries
}

// Run invokes op until it succeeds, a fatal error occurs, or the retry
// budget is exhausted. With a budget of N the operation is invoked at most
// N+1 times. Exhaustion is reported as generation.ErrSourceExhausted
// (wrapped), distinct from the provider error that caused it.
func (r *Retrier) Run(ctx context.Context, op func(context.Context) (string, error)) (string, error) {
	retriesLeft := r.retries

	for {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}

		wait, fatal := r.classify(ctx, err)
		if fatal != nil {
			return "", fatal
		}

		if retriesLeft <= 0 {
			r.logger.InfoContext(ctx, "no retries left, giving up")
			return "", fmt.Errorf("%w (last error: %v)", generation.ErrSourceExhausted, err)
		}

		r.logger.InfoContext(ctx, "retrying after backoff",
			"wait_seconds", int(wait/time.Second),
			"retries_left", retriesLeft)

		if err := r.sleep(ctx, wait); err != nil {
			return "", err
		}
		retriesLeft--
	}
}

// classify maps a failed attempt to either a backoff duration (retryable) or
// a fatal error to escalate. A 404 from the provider means the configured
// model does not exist and never consumes retry budget.
func (r *Retrier) classify(ctx context.Context, err error) (time.Duration, error) {
	var clientErr *generation.ClientError
	var serverErr *generation.ServerError
	var transportErr *generation.TransportError

	switch {
	case errors.As(err, &clientErr):
		if clientErr.Code == http.StatusNotFound {
			return 0, fmt.Errorf("%w: %v", generation.ErrModelNotFound, err)
		}
		wait := r.clientWait
		if clientErr.Code == http.StatusTooManyRequests {
			wait = r.waitFromHint(clientErr.RetryDelay)
		}
		r.logger.WarnContext(ctx, "client error from provider",
			"code", clientErr.Code,
			"status", clientErr.Status)
		return wait, nil

	case errors.As(err, &serverErr):
		r.logger.WarnContext(ctx, "server error from provider", "error", err)
		return r.serverWait, nil

	case errors.As(err, &transportErr):
		r.logger.WarnContext(ctx, "transport error calling provider", "error", err)
		return r.clientWait, nil

	default:
		// Unclassified failures are fatal and escalate immediately.
		return 0, err
	}
}

// waitFromHint converts a provider retry-delay hint such as "3.42s" into a
// wait duration. Fractional seconds truncate toward zero. A hint of exactly
// zero seconds yields zeroHintWait, not a zero wait. Absent or unparseable
// hints fall back to the default client wait.
func (r *Retrier) waitFromHint(hint string) time.Duration {
	match := retryDelayPattern.FindStringSubmatch(strings.TrimSpace(hint))
	if match == nil {
		return r.clientWait
	}

	seconds, err := strconv.ParseFloat(match[1]+match[2], 64)
	if err != nil {
		return r.clientWait
	}
	if seconds == 0 {
		return zeroHintWait
	}
	return time.Duration(int(seconds)) * time.Second
}

// sleepCoarse waits in one-second slices, checking for context cancellation
// between slices so a minute-long backoff can be abandoned promptly.
func (r *Retrier) sleepCoarse(ctx context.Context, d time.Duration) error {
	for remaining := d; remaining > 0; remaining -= time.Second {
		slice := time.Second
		if remaining < slice {
			slice = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(slice):
		}
	}
	return nil
}
