package middleware

import (
	"context"
	"fmt"
	"maps"
	"regexp"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
)

// Masked replaces redacted variable values.
const Masked = "***"

type piiMiddleware struct {
	next     ports.RequestStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks request variables whose names match any pattern.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.RequestStore) ports.RequestStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, summary *domain.RequestSummary) error {
	// The caller keeps its summary untouched.
	cloned := *summary
	cloned.Vars = maps.Clone(summary.Vars)
	m.mask(cloned.Vars)
	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, runID, requestID string) (*domain.RequestSummary, error) {
	return m.next.Load(ctx, runID, requestID)
}

func (m *piiMiddleware) List(ctx context.Context, runID string) ([]string, error) {
	return m.next.List(ctx, runID)
}

func (m *piiMiddleware) Delete(ctx context.Context, runID, requestID string) error {
	return m.next.Delete(ctx, runID, requestID)
}

func (m *piiMiddleware) mask(vars map[string]string) {
	for k := range vars {
		for _, p := range m.patterns {
			if p.MatchString(k) {
				vars[k] = Masked
				break
			}
		}
	}
}
