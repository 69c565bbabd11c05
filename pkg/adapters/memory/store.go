package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/stitch/pkg/domain"
)

// Store implements ports.RequestStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]map[string]*domain.RequestSummary
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]*domain.RequestSummary),
	}
}

func clone(s *domain.RequestSummary) *domain.RequestSummary {
	c := *s
	c.Hosts = slices.Clone(s.Hosts)
	c.MainPath = slices.Clone(s.MainPath)
	c.Vars = maps.Clone(s.Vars)
	if s.Errors != nil {
		c.Errors = make(map[string][]string, len(s.Errors))
		for k, v := range s.Errors {
			c.Errors[k] = slices.Clone(v)
		}
	}
	if s.Warnings != nil {
		c.Warnings = make(map[string][]string, len(s.Warnings))
		for k, v := range s.Warnings {
			c.Warnings[k] = slices.Clone(v)
		}
	}
	return &c
}

// Save stores a copy so callers cannot mutate the stored summary.
func (s *Store) Save(ctx context.Context, summary *domain.RequestSummary) error {
	copied := clone(summary)

	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.data[summary.RunID]
	if !ok {
		run = make(map[string]*domain.RequestSummary)
		s.data[summary.RunID] = run
	}
	run[summary.RequestID] = copied
	return nil
}

// Load returns a copy of the stored summary.
func (s *Store) Load(ctx context.Context, runID, requestID string) (*domain.RequestSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.data[runID][requestID]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return clone(summary), nil
}

// List returns the stored request ids of a run, sorted.
func (s *Store) List(ctx context.Context, runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data[runID]))
	for id := range s.data[runID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a summary.
func (s *Store) Delete(ctx context.Context, runID, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[runID], requestID)
	return nil
}
