package stitch

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithWorkers bounds how many threads replay, and how many join declarations
// match, concurrently. Zero means unbounded.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithStore persists a summary of every valid request at the end of a run.
func WithStore(store ports.RequestStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithTracerProvider sets the provider for per-phase spans.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracerProvider = tp
	}
}
