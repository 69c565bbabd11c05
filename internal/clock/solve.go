package clock

import (
	"fmt"
	"sort"
	"strings"
)

// ContradictionError reports a bound that crossed while propagating.
// It carries the full host table at the time of failure.
type ContradictionError struct {
	Host     string
	Relation RelationConstraint
	Bound    Bound
	Hosts    []HostConstraint
}

func (e *ContradictionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "clock contradiction on host %s: bound %s crossed through relation %s-%s %s",
		e.Host, e.Bound, e.Relation.A, e.Relation.B, e.Relation.Bound)
	for _, h := range e.Hosts {
		fmt.Fprintf(&b, "\n  %s %s pinned=%t offset=%g", h.Host, h.Bound, h.Pinned, h.Offset)
	}
	return b.String()
}

// Solve pins every host and returns the offsets by host.
// The most connected unresolved host is pinned first; ties go to the smaller name.
func (s *System) Solve() (map[string]float64, error) {
	for {
		next := s.nextUnresolved()
		if next == nil {
			break
		}
		next.Offset = next.Bound.Pin()
		next.Bound = Bound{Low: next.Offset, High: next.Offset}
		next.Pinned = true
		if err := s.propagate(next, len(s.hosts)*len(s.relations)+len(s.hosts)); err != nil {
			return nil, err
		}
	}

	offsets := make(map[string]float64, len(s.hosts))
	for name, h := range s.hosts {
		offsets[name] = h.Offset
	}
	return offsets, nil
}

func (s *System) nextUnresolved() *HostConstraint {
	var names []string
	for name, h := range s.hosts {
		if !h.Pinned {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	best := s.hosts[names[0]]
	for _, name := range names[1:] {
		if h := s.hosts[name]; len(h.relations) > len(best.relations) {
			best = h
		}
	}
	return best
}

// propagate tightens neighbours of h and recurses on every host whose bound changed.
// budget guards against non-converging propagation.
func (s *System) propagate(h *HostConstraint, budget int) error {
	if budget < 0 {
		return fmt.Errorf("clock propagation did not converge at host %s", h.Host)
	}
	for _, r := range h.relations {
		other := s.hosts[r.Other(h.Host)]
		changed, err := s.tighten(other, r, r.implied(h.Host, h.Bound))
		if err != nil {
			return err
		}
		if changed {
			if err := s.propagate(other, budget-1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *System) tighten(h *HostConstraint, r *RelationConstraint, implied Bound) (bool, error) {
	next := h.Bound.Intersect(implied)
	if next.Empty() {
		return false, &ContradictionError{Host: h.Host, Relation: *r, Bound: next, Hosts: s.Hosts()}
	}
	changed := next.Low > h.Bound.Low+epsilon || next.High < h.Bound.High-epsilon
	if changed {
		h.Bound = next
	}
	return changed, nil
}
