package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mstolarz/vizquery/internal/generation"
	"github.com/mstolarz/vizquery/internal/store"
)

// ErrNotConfigured is returned by Provider.Current before the first
// successful Configure call.
var ErrNotConfigured = NewVisualizerError("lookup", "no database connection configured", nil)

// InspectorFactory opens an inspector for a database URL.
type InspectorFactory func(ctx context.Context, databaseURL string) (store.Inspector, error)

// GeneratorFactory builds a generator for a model name. An empty model
// selects the configured default.
type GeneratorFactory func(ctx context.Context, model string) (generation.Generator, error)

// Provider holds the active Visualizer and swaps it atomically when the
// settings endpoint reconfigures the database connection or model.
type Provider struct {
	mu             sync.RWMutex
	logger         *slog.Logger
	newInspector   InspectorFactory
	newGenerator   GeneratorFactory
	engine         ChartEngine
	maxSQLAttempts int
	plotDir        string
	current        *Visualizer
	inspector      store.Inspector
}

// NewProvider creates a Provider with no active visualizer.
func NewProvider(
	logger *slog.Logger,
	newInspector InspectorFactory,
	newGenerator GeneratorFactory,
	engine ChartEngine,
	maxSQLAttempts int,
	plotDir string,
) (*Provider, error) {
	if newInspector == nil || newGenerator == nil {
		return nil, NewVisualizerError("initialization", "factories are required", nil)
	}
	if engine == nil {
		return nil, NewVisualizerError("initialization", "chart engine is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		logger:         logger,
		newInspector:   newInspector,
		newGenerator:   newGenerator,
		engine:         engine,
		maxSQLAttempts: maxSQLAttempts,
		plotDir:        plotDir,
	}, nil
}

// Configure builds a new Visualizer for the given database URL and model
// and makes it the active one. The previous database connection is closed.
// On failure the previous visualizer stays active.
func (p *Provider) Configure(ctx context.Context, databaseURL, model string) error {
	inspector, err := p.newInspector(ctx, databaseURL)
	if err != nil {
		return NewVisualizerError("configuration", "could not connect to database", err)
	}

	generator, err := p.newGenerator(ctx, model)
	if err != nil {
		if closeErr := inspector.Close(); closeErr != nil {
			p.logger.Warn("failed to close inspector", "error", closeErr)
		}
		return NewVisualizerError("configuration", "could not create generator", err)
	}

	visualizer, err := NewVisualizer(p.logger, inspector, generator, p.engine, p.maxSQLAttempts, p.plotDir)
	if err != nil {
		if closeErr := inspector.Close(); closeErr != nil {
			p.logger.Warn("failed to close inspector", "error", closeErr)
		}
		return err
	}

	p.mu.Lock()
	old := p.inspector
	p.current = visualizer
	p.inspector = inspector
	p.mu.Unlock()

	if old != nil {
		if closeErr := old.Close(); closeErr != nil {
			p.logger.Warn("failed to close previous inspector", "error", closeErr)
		}
	}

	p.logger.Info("visualizer reconfigured", "model", model)
	return nil
}

// Current returns the active Visualizer, or ErrNotConfigured before the
// first Configure.
func (p *Provider) Current() (*Visualizer, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil, ErrNotConfigured
	}
	return p.current, nil
}

// Close releases the active database connection.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inspector == nil {
		return nil
	}
	err := p.inspector.Close()
	p.inspector = nil
	p.current = nil
	return err
}
