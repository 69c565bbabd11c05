package clock

import "github.com/aretw0/stitch/pkg/domain"

// FromJoins builds a system from the remote joins among joins.
func FromJoins(joins []*domain.Interval) *System {
	s := NewSystem()
	for _, iv := range joins {
		if !iv.IsRemote() {
			continue
		}
		s.Observe(iv.From.Host(), iv.From.RawSeconds(), iv.To.Host(), iv.To.RawSeconds())
	}
	return s
}

// Apply sets the offset of every target to the offset of its host.
// Hosts missing from offsets keep their current offset.
func Apply(offsets map[string]float64, targets []*domain.Target) {
	for _, t := range targets {
		if o, ok := offsets[t.Host]; ok {
			t.Offset = o
		}
	}
}

// CountViolated returns how many remote joins currently run backwards.
func CountViolated(joins []*domain.Interval) int {
	n := 0
	for _, iv := range joins {
		if iv.IsRemote() && iv.Violated() {
			n++
		}
	}
	return n
}
