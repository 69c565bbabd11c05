package clock

import "sort"

// HostConstraint is the unknown offset of one host.
type HostConstraint struct {
	Host   string  `json:"host"`
	Bound  Bound   `json:"bound"`
	Pinned bool    `json:"pinned"`
	Offset float64 `json:"offset"`

	relations []*RelationConstraint
}

// RelationConstraint bounds oB - oA for the host pair A < B.
type RelationConstraint struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Bound Bound  `json:"bound"`
	// Observations counts the joins folded into the bound.
	Observations int `json:"observations"`
}

// Other returns the host on the opposite side of host.
func (r *RelationConstraint) Other(host string) string {
	if host == r.A {
		return r.B
	}
	return r.A
}

// implied returns the bound the relation puts on the other host given host's bound.
func (r *RelationConstraint) implied(host string, b Bound) Bound {
	if host == r.A {
		return Bound{Low: b.Low + r.Bound.Low, High: b.High + r.Bound.High}
	}
	return Bound{Low: b.Low - r.Bound.High, High: b.High - r.Bound.Low}
}

// System is the set of host and relation constraints built from remote joins.
type System struct {
	hosts     map[string]*HostConstraint
	relations map[[2]string]*RelationConstraint
}

// NewSystem creates an empty system.
func NewSystem() *System {
	return &System{
		hosts:     make(map[string]*HostConstraint),
		relations: make(map[[2]string]*RelationConstraint),
	}
}

func (s *System) host(name string) *HostConstraint {
	h, ok := s.hosts[name]
	if !ok {
		h = &HostConstraint{Host: name, Bound: Unbounded()}
		s.hosts[name] = h
	}
	return h
}

// AddHost registers a host with no relation; it will be pinned at zero.
func (s *System) AddHost(name string) {
	s.host(name)
}

// Observe records that an event at raw time from on host fromHost caused an
// event at raw time to on host toHost. Events on the same host are ignored.
func (s *System) Observe(fromHost string, from float64, toHost string, to float64) {
	if fromHost == toHost {
		return
	}
	a, b := fromHost, toHost
	if b < a {
		a, b = b, a
	}
	key := [2]string{a, b}
	r, ok := s.relations[key]
	if !ok {
		r = &RelationConstraint{A: a, B: b, Bound: Unbounded()}
		s.relations[key] = r
		ha, hb := s.host(a), s.host(b)
		ha.relations = append(ha.relations, r)
		hb.relations = append(hb.relations, r)
	}
	r.Observations++

	// oTo - oFrom >= from - to
	delta := from - to
	if fromHost == a {
		if delta > r.Bound.Low {
			r.Bound.Low = delta
		}
	} else if -delta < r.Bound.High {
		r.Bound.High = -delta
	}
}

// Hosts returns every host constraint, sorted by host.
func (s *System) Hosts() []HostConstraint {
	out := make([]HostConstraint, 0, len(s.hosts))
	for _, h := range s.hosts {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}

// Relations returns every relation constraint, sorted by host pair.
func (s *System) Relations() []RelationConstraint {
	out := make([]RelationConstraint, 0, len(s.relations))
	for _, r := range s.relations {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
