package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstolarz/vizquery/internal/generation"
	"github.com/mstolarz/vizquery/internal/store"
)

// closeTrackingInspector wraps fakeInspector and records Close calls.
type closeTrackingInspector struct {
	fakeInspector
	closed int
}

func (c *closeTrackingInspector) Close() error {
	c.closed++
	return nil
}

func newTestProvider(t *testing.T, newInspector InspectorFactory, newGenerator GeneratorFactory) *Provider {
	t.Helper()

	p, err := NewProvider(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		newInspector, newGenerator, &fakeEngine{}, 2, "plots")
	require.NoError(t, err)
	return p
}

func TestProvider_CurrentBeforeConfigure(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t,
		func(context.Context, string) (store.Inspector, error) { return &fakeInspector{}, nil },
		func(context.Context, string) (generation.Generator, error) { return &fakeGenerator{responses: []string{""}}, nil })

	_, err := p.Current()
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestProvider_ConfigureSwapsAndClosesPrevious(t *testing.T) {
	t.Parallel()

	first := &closeTrackingInspector{}
	second := &closeTrackingInspector{}
	inspectors := []store.Inspector{first, second}
	calls := 0

	p := newTestProvider(t,
		func(context.Context, string) (store.Inspector, error) {
			inspector := inspectors[calls]
			calls++
			return inspector, nil
		},
		func(context.Context, string) (generation.Generator, error) {
			return &fakeGenerator{responses: []string{""}}, nil
		})

	require.NoError(t, p.Configure(context.Background(), "postgres://one", ""))
	v1, err := p.Current()
	require.NoError(t, err)

	require.NoError(t, p.Configure(context.Background(), "postgres://two", "gemini-2.5-pro"))
	v2, err := p.Current()
	require.NoError(t, err)

	assert.NotSame(t, v1, v2)
	assert.Equal(t, 1, first.closed, "previous connection must be closed on swap")
	assert.Equal(t, 0, second.closed)
}

func TestProvider_ConfigureFailureKeepsPrevious(t *testing.T) {
	t.Parallel()

	// The generator factory fails on the second configure.
	genCalls := 0
	p := newTestProvider(t,
		func(context.Context, string) (store.Inspector, error) { return &closeTrackingInspector{}, nil },
		func(context.Context, string) (generation.Generator, error) {
			genCalls++
			if genCalls > 1 {
				return nil, errors.New("bad model")
			}
			return &fakeGenerator{responses: []string{""}}, nil
		})

	require.NoError(t, p.Configure(context.Background(), "postgres://one", ""))
	before, err := p.Current()
	require.NoError(t, err)

	err = p.Configure(context.Background(), "postgres://two", "nope")
	require.Error(t, err)

	after, currentErr := p.Current()
	require.NoError(t, currentErr)
	assert.Same(t, before, after, "failed reconfigure must keep the active visualizer")
}

func TestProvider_Close(t *testing.T) {
	t.Parallel()

	inspector := &closeTrackingInspector{}
	p := newTestProvider(t,
		func(context.Context, string) (store.Inspector, error) { return inspector, nil },
		func(context.Context, string) (generation.Generator, error) {
			return &fakeGenerator{responses: []string{""}}, nil
		})

	require.NoError(t, p.Configure(context.Background(), "postgres://one", ""))
	require.NoError(t, p.Close())
	assert.Equal(t, 1, inspector.closed)

	_, err := p.Current()
	assert.ErrorIs(t, err, ErrNotConfigured)
}
