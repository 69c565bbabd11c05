package ports

import (
	"context"

	"github.com/aretw0/stitch/pkg/domain"
)

// RequestStore persists assembled request summaries, scoped by run.
type RequestStore interface {
	// Save persists a summary, replacing any previous one for the same run and request.
	Save(ctx context.Context, summary *domain.RequestSummary) error

	// Load retrieves a summary.
	// Returns domain.ErrRequestNotFound if it does not exist.
	Load(ctx context.Context, runID, requestID string) (*domain.RequestSummary, error)

	// List returns the request ids stored for a run, sorted.
	List(ctx context.Context, runID string) ([]string, error)

	// Delete removes a summary. Deleting a missing summary is not an error.
	Delete(ctx context.Context, runID, requestID string) error
}
