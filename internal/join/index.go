package join

import (
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/schema"
)

// index narrows the receiving paces a source has to scan.
// When the schema pins a placement key, targets are bucketed by its value.
type index struct {
	key     string
	all     []*domain.Pace
	buckets map[string][]*domain.Pace
}

func newIndex(s schema.Schema, targets []*domain.Pace) *index {
	idx := &index{all: targets}
	key, ok := s.Scope()
	if !ok {
		return idx
	}
	idx.key = key
	idx.buckets = make(map[string][]*domain.Pace)
	for _, p := range targets {
		v, _ := p.Get(key)
		idx.buckets[v] = append(idx.buckets[v], p)
	}
	return idx
}

// candidates returns the chronologically ordered targets worth testing for src.
func (i *index) candidates(src *domain.Pace) []*domain.Pace {
	if i.buckets == nil {
		return i.all
	}
	v, _ := src.Get(i.key)
	return i.buckets[v]
}
