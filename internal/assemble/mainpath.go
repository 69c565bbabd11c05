package assemble

import (
	"fmt"
	"slices"

	"github.com/aretw0/stitch/pkg/domain"
)

// walk reconstructs the main path backwards from end to start. At each pace a
// join into it from one of members dominates the thread predecessor; two or
// more such joins are ambiguous. Inside a shared thread the walk steps back to
// the nearest pace joined with one of the request's own threads.
func walk(start, end *domain.Pace, members map[*domain.ThreadInstance]bool) ([]*domain.Interval, domain.ErrorKind, string) {
	var path []*domain.Interval
	seen := make(map[*domain.Pace]bool)

	for cur := end; cur != start; {
		if seen[cur] {
			return nil, domain.ErrBrokenMainPath, fmt.Sprintf("cycle at %s#%d", cur.Thread.Name(), cur.Index)
		}
		seen[cur] = true

		var joins []*domain.Interval
		for _, iv := range cur.JoinsIn {
			if members[iv.From.Thread] {
				joins = append(joins, iv)
			}
		}

		var prev *domain.Interval
		switch {
		case len(joins) > 1:
			return nil, domain.ErrAmbiguousMainPath,
				fmt.Sprintf("%d joins into %s#%d", len(joins), cur.Thread.Name(), cur.Index)
		case len(joins) == 1:
			prev = joins[0]
		case cur.Thread.Shared:
			prev = sharedPredecessor(cur, members)
		default:
			prev = cur.Prev
		}
		if prev == nil {
			return nil, domain.ErrBrokenMainPath,
				fmt.Sprintf("no predecessor for %s#%d", cur.Thread.Name(), cur.Index)
		}

		path = append(path, prev)
		cur = prev.From
	}

	slices.Reverse(path)
	return path, "", ""
}

// sharedPredecessor finds the closest earlier pace of cur's shared thread that
// is joined with a non-shared member thread. Paces serving other requests are
// skipped and the returned interval spans them.
func sharedPredecessor(cur *domain.Pace, members map[*domain.ThreadInstance]bool) *domain.Interval {
	paces := cur.Thread.Paces
	for i := cur.Index - 1; i >= 0; i-- {
		p := paces[i]
		if !joinedWith(p, members) {
			continue
		}
		if cur.Prev != nil && cur.Prev.From == p {
			return cur.Prev
		}
		return &domain.Interval{Kind: domain.IntervalThread, From: p, To: cur}
	}
	return nil
}

func joinedWith(p *domain.Pace, members map[*domain.ThreadInstance]bool) bool {
	for _, iv := range p.JoinsIn {
		if t := iv.From.Thread; members[t] && !t.Shared {
			return true
		}
	}
	for _, iv := range p.JoinsOut {
		if t := iv.To.Thread; members[t] && !t.Shared {
			return true
		}
	}
	return false
}
