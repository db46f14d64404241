package gemini

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstolarz/vizquery/internal/generation"
)

// scriptedOp is a fake operation that fails with errs[i] on call i and
// succeeds with value once the script runs out.
type scriptedOp struct {
	calls int
	errs  []error
	value string
}

func (s *scriptedOp) run(_ context.Context) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.value, nil
}

// repeat builds a script of n copies of err.
func repeat(err error, n int) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}

func newTestRetrier(t *testing.T, retries int) (*Retrier, *[]time.Duration) {
	t.Helper()
	r := NewRetrier(slog.Default(), retries, 60*time.Second, 5*time.Second)

	sleeps := &[]time.Duration{}
	r.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return r, sleeps
}

func TestRetrierRun_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	r, sleeps := newTestRetrier(t, 3)
	op := &scriptedOp{value: "SELECT 1;"}

	out, err := r.Run(context.Background(), op.run)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;", out)
	assert.Equal(t, 1, op.calls)
	assert.Empty(t, *sleeps)
}

func TestRetrierRun_ExhaustsBudget(t *testing.T) {
	t.Parallel()

	// A budget of N permits exactly N+1 invocations, never N+2.
	for _, budget := range []int{0, 1, 3} {
		r, sleeps := newTestRetrier(t, budget)
		op := &scriptedOp{errs: repeat(&generation.ServerError{Message: "boom"}, budget+5)}

		_, err := r.Run(context.Background(), op.run)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrSourceExhausted)
		assert.Equal(t, budget+1, op.calls, "budget %d", budget)
		assert.Len(t, *sleeps, budget)
	}
}

func TestRetrierRun_ModelNotFoundIsFatal(t *testing.T) {
	t.Parallel()

	r, sleeps := newTestRetrier(t, 3)
	op := &scriptedOp{errs: []error{
		&generation.ClientError{Code: 404, Status: "NOT_FOUND"},
	}}

	_, err := r.Run(context.Background(), op.run)
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrModelNotFound)
	assert.NotErrorIs(t, err, generation.ErrSourceExhausted)
	assert.Equal(t, 1, op.calls, "fatal errors must not consume retry budget")
	assert.Empty(t, *sleeps, "fatal errors must not sleep")
}

func TestRetrierRun_UnclassifiedErrorEscalates(t *testing.T) {
	t.Parallel()

	r, sleeps := newTestRetrier(t, 3)
	fatal := errors.New("malformed configuration")
	op := &scriptedOp{errs: []error{fatal}}

	_, err := r.Run(context.Background(), op.run)
	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, op.calls)
	assert.Empty(t, *sleeps)
}

func TestRetrierRun_ServerErrorsThenSuccess(t *testing.T) {
	t.Parallel()

	r, sleeps := newTestRetrier(t, 3)
	op := &scriptedOp{
		errs: []error{
			&generation.ServerError{Message: "overloaded"},
			&generation.ServerError{Message: "overloaded"},
		},
		value: "answer",
	}

	out, err := r.Run(context.Background(), op.run)
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *sleeps)
}

func TestRetrierRun_BackoffPerFailureClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{
			name: "quota error honors retry hint",
			err:  &generation.ClientError{Code: 429, Status: "RESOURCE_EXHAUSTED", RetryDelay: "3s"},
			want: 3 * time.Second,
		},
		{
			name: "quota error without hint uses client wait",
			err:  &generation.ClientError{Code: 429, Status: "RESOURCE_EXHAUSTED"},
			want: 60 * time.Second,
		},
		{
			name: "other client error uses client wait",
			err:  &generation.ClientError{Code: 400, Status: "INVALID_ARGUMENT"},
			want: 60 * time.Second,
		},
		{
			name: "server error uses server wait",
			err:  &generation.ServerError{Message: "unavailable"},
			want: 5 * time.Second,
		},
		{
			name: "transport error uses client wait",
			err:  &generation.TransportError{Message: "connection reset"},
			want: 60 * time.Second,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r, sleeps := newTestRetrier(t, 1)
			op := &scriptedOp{errs: []error{tc.err}, value: "ok"}

			out, err := r.Run(context.Background(), op.run)
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
			assert.Equal(t, []time.Duration{tc.want}, *sleeps)
		})
	}
}

func TestRetrier_WaitFromHint(t *testing.T) {
	t.Parallel()

	r := NewRetrier(slog.Default(), 3, 60*time.Second, 5*time.Second)

	tests := []struct {
		hint string
		want time.Duration
	}{
		// A zero hint means "wait a minute", not "retry immediately".
		{hint: "0s", want: time.Minute},
		{hint: "0.0s", want: time.Minute},
		{hint: "3s", want: 3 * time.Second},
		// Fractional seconds truncate toward zero.
		{hint: "3.5s", want: 3 * time.Second},
		{hint: "3.427436554s", want: 3 * time.Second},
		{hint: "0.5s", want: 0},
		{hint: "", want: 60 * time.Second},
		{hint: "soon", want: 60 * time.Second},
		{hint: "12m", want: 60 * time.Second},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, r.waitFromHint(tc.hint), "hint %q", tc.hint)
	}
}

func TestRetrier_SetAndResetRetries(t *testing.T) {
	t.Parallel()

	r, _ := newTestRetrier(t, 2)
	failing := func() *scriptedOp {
		return &scriptedOp{errs: repeat(&generation.ServerError{Message: "down"}, 10)}
	}

	// Explicit override shrinks the budget to exactly k.
	r.SetRetries(1)
	op := failing()
	_, err := r.Run(context.Background(), op.run)
	assert.ErrorIs(t, err, generation.ErrSourceExhausted)
	assert.Equal(t, 2, op.calls)

	// Reset with no value restores the configured default.
	r.ResetRetries()
	op = failing()
	_, err = r.Run(context.Background(), op.run)
	assert.ErrorIs(t, err, generation.ErrSourceExhausted)
	assert.Equal(t, 3, op.calls)
}

func TestRetrierRun_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	// Uses the real coarse sleep; a cancelled context aborts the wait.
	r := NewRetrier(slog.Default(), 3, 60*time.Second, 5*time.Second)
	op := &scriptedOp{errs: repeat(&generation.ServerError{Message: "down"}, 10)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := r.Run(ctx, op.run)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, op.calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewRetrier_Defaults(t *testing.T) {
	t.Parallel()

	r := NewRetrier(nil, -1, 0, 0)
	assert.Equal(t, defaultRetries, r.retries)
	assert.Equal(t, defaultClientWait, r.clientWait)
	assert.Equal(t, defaultServerWait, r.serverWait)
}
