package replay

import (
	"log/slog"

	"github.com/aretw0/stitch/internal/logging"
	"github.com/aretw0/stitch/pkg/domain"
)

// DefaultMaxCallDepth bounds nested call edges entered without consuming a line.
const DefaultMaxCallDepth = 64

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxCallDepth overrides DefaultMaxCallDepth.
func WithMaxCallDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

func defaults(e *Engine) {
	e.logger = logging.NewNop()
	e.maxDepth = DefaultMaxCallDepth
}
