package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/aretw0/stitch/pkg/domain"
)

// Source implements ports.LineSource over lines held in memory.
// Lines are grouped by thread and stable-sorted by timestamp.
type Source struct {
	keys    []domain.ThreadKey
	threads map[domain.ThreadKey][]*domain.Line
}

// NewSource groups lines by thread.
func NewSource(lines ...*domain.Line) *Source {
	s := &Source{threads: make(map[domain.ThreadKey][]*domain.Line)}
	for _, l := range lines {
		key := l.Key()
		if _, ok := s.threads[key]; !ok {
			s.keys = append(s.keys, key)
		}
		s.threads[key] = append(s.threads[key], l)
	}

	sort.Slice(s.keys, func(i, j int) bool { return s.keys[i].Less(s.keys[j]) })
	for _, ls := range s.threads {
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].Seconds < ls[j].Seconds })
	}
	return s
}

// Threads lists thread keys sorted by host, target and thread.
func (s *Source) Threads(ctx context.Context) ([]domain.ThreadKey, error) {
	return slices.Clone(s.keys), nil
}

// Lines returns the lines of one thread; unknown keys yield no lines.
func (s *Source) Lines(ctx context.Context, key domain.ThreadKey) ([]*domain.Line, error) {
	return slices.Clone(s.threads[key]), nil
}
