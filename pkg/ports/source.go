package ports

import (
	"context"

	"github.com/aretw0/stitch/pkg/domain"
)

// LineSource provides the lines to replay, grouped by thread.
type LineSource interface {
	// Threads lists the thread keys with at least one line, in a stable order.
	Threads(ctx context.Context) ([]domain.ThreadKey, error)

	// Lines returns the lines of one thread sorted by timestamp.
	// Implementations must return a fresh slice on every call.
	Lines(ctx context.Context, key domain.ThreadKey) ([]*domain.Line, error)
}
