package graph

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/schema"
)

// Compile resolves fragment merges, validates the draft and freezes it into a Model.
// All failures are reported together in a *schema.AggregateError.
func Compile(d *Draft) (*Model, error) {
	m := &Model{
		nodes:      slices.Clone(d.Nodes),
		edges:      slices.Clone(d.Edges),
		fragments:  make([]Fragment, len(d.Fragments)),
		owner:      make([]domain.FragmentID, len(d.Fragments)),
		components: make(map[string][]domain.NodeID),
		edgeByName: make(map[string]domain.EdgeID),
		nodeByName: make(map[string]domain.NodeID),
		fragByName: make(map[string]domain.FragmentID),
	}

	c := &compiler{model: m, errs: slices.Clone(d.Problems)}

	c.resolveFragments(d)
	c.indexEdges()
	c.checkFragments()
	c.checkNodes()
	c.checkDisjoint()
	c.resolveComponents(d)
	c.resolveJoins(d)

	if len(c.errs) > 0 {
		return nil, &schema.AggregateError{Errors: c.errs}
	}
	return m, nil
}

type compiler struct {
	model *Model
	errs  []error
}

func (c *compiler) fail(subject, reason string, value any) {
	c.errs = append(c.errs, &schema.ValidationError{Key: subject, Reason: reason, Value: value})
}

func (c *compiler) resolveFragments(d *Draft) {
	m := c.model
	for i := range d.Fragments {
		f := domain.FragmentID(i)
		m.owner[i] = d.Owner(f)
		m.fragments[i] = Fragment{
			ID:      f,
			Name:    d.Fragments[i].Name,
			Aliases: slices.Clone(d.Fragments[i].Aliases),
			Shared:  d.Fragments[i].Shared,
		}
		m.fragByName[d.Fragments[i].Name] = f
	}

	for i := range m.nodes {
		n := &m.nodes[i]
		n.Fragment = m.owner[n.Fragment]
		n.Out = slices.Clone(n.Out)
		m.nodeByName[n.Name] = n.ID

		frag := &m.fragments[n.Fragment]
		frag.Nodes = append(frag.Nodes, n.ID)
		if n.Start {
			frag.Starts = append(frag.Starts, n.ID)
		}
		if n.End {
			frag.Ends = append(frag.Ends, n.ID)
		}
	}

	for i := range m.edges {
		if m.edges[i].Kind == domain.EdgeCall {
			m.edges[i].Callee = m.owner[m.edges[i].Callee]
		}
	}
}

func (c *compiler) indexEdges() {
	m := c.model
	for _, e := range m.edges {
		if _, dup := m.edgeByName[e.Name]; dup {
			c.fail("edge "+e.Name, "duplicate edge name", nil)
			continue
		}
		m.edgeByName[e.Name] = e.ID
		if e.Kind == domain.EdgeKeyword && e.Keyword == "" {
			c.fail("edge "+e.Name, "empty keyword matches every line", nil)
		}
	}
}

func (c *compiler) checkFragments() {
	m := c.model
	for i := range m.fragments {
		f := &m.fragments[i]
		if m.owner[i] != f.ID {
			continue
		}
		switch {
		case len(f.Nodes) == 0:
			c.fail("fragment "+f.Name, "declared but has no nodes", nil)
		case len(f.Starts) == 0:
			c.fail("fragment "+f.Name, "has no start node", nil)
		case len(f.Ends) == 0:
			c.fail("fragment "+f.Name, "has no end node", nil)
		}
	}
}

func (c *compiler) checkNodes() {
	for _, n := range c.model.nodes {
		if n.RequestState != "" && !n.End {
			c.fail("node "+n.Name, "request state on a non-end node", n.RequestState)
		}
		if n.RequestStart && !n.Start {
			c.fail("node "+n.Name, "request start on a non-start node", nil)
		}
	}
}

// firstKeywords returns the keywords that can be consumed first when taking an edge.
// path holds the fragments entered without consuming a line; re-entering one is a cycle.
func (c *compiler) firstKeywords(id domain.EdgeID, path []domain.FragmentID) ([]string, error) {
	m := c.model
	e := m.edges[id]
	if e.Kind == domain.EdgeKeyword {
		return []string{e.Keyword}, nil
	}
	if slices.Contains(path, e.Callee) {
		return nil, fmt.Errorf("re-enters fragment %s without consuming a line", m.fragments[e.Callee].Name)
	}
	path = append(slices.Clone(path), e.Callee)

	var out []string
	for _, s := range m.fragments[e.Callee].Starts {
		for _, next := range m.nodes[s].Out {
			kws, err := c.firstKeywords(next, path)
			if err != nil {
				return nil, err
			}
			out = append(out, kws...)
		}
	}
	return out, nil
}

func (c *compiler) checkDisjoint() {
	m := c.model
	for _, n := range m.nodes {
		keywords := make([][]string, len(n.Out))
		var path []domain.FragmentID
		if n.Start {
			path = []domain.FragmentID{n.Fragment}
		}
		for i, id := range n.Out {
			kws, err := c.firstKeywords(id, path)
			if err != nil {
				c.fail("edge "+m.edges[id].Name, err.Error(), nil)
				continue
			}
			keywords[i] = kws
		}

		for i := 0; i < len(n.Out); i++ {
			for j := i + 1; j < len(n.Out); j++ {
				if a, b, clash := overlapping(keywords[i], keywords[j]); clash {
					c.fail("node "+n.Name,
						fmt.Sprintf("edges %s and %s are not keyword-disjoint", m.edges[n.Out[i]].Name, m.edges[n.Out[j]].Name),
						a+" / "+b)
				}
			}
		}
	}
}

// overlapping reports a pair of keywords where one line could match both.
func overlapping(as, bs []string) (string, string, bool) {
	for _, a := range as {
		for _, b := range bs {
			if a == "" || b == "" {
				continue
			}
			if strings.Contains(a, b) || strings.Contains(b, a) {
				return a, b, true
			}
		}
	}
	return "", "", false
}

func (c *compiler) resolveComponents(d *Draft) {
	m := c.model
	for _, comp := range d.Components {
		var starts []domain.NodeID
		for _, f := range comp.Fragments {
			for _, s := range m.Fragment(f).Starts {
				if !slices.Contains(starts, s) {
					starts = append(starts, s)
				}
			}
		}
		if len(comp.Fragments) == 0 {
			c.fail("component "+comp.Name, "has no fragments", nil)
		}
		if _, dup := m.components[comp.Name]; dup {
			m.components[comp.Name] = append(m.components[comp.Name], starts...)
			continue
		}
		m.components[comp.Name] = starts
		m.componentNames = append(m.componentNames, comp.Name)
	}
	sort.Strings(m.componentNames)

	if len(m.componentNames) == 0 {
		return
	}

	var hasStart, hasTerminal bool
	for _, n := range m.nodes {
		hasStart = hasStart || n.RequestStart
		hasTerminal = hasTerminal || n.IsTerminal()
	}
	if !hasStart {
		c.fail("graph", "no request start node", nil)
	}
	if !hasTerminal {
		c.fail("graph", "no terminal node carries a request state", nil)
	}
}

func (c *compiler) resolveEndpoint(d *Draft, name string) (domain.EdgeID, bool) {
	if id, ok := c.model.edgeByName[name]; ok {
		return id, true
	}
	if edge, ok := d.Interfaces[name]; ok {
		id, ok := c.model.edgeByName[edge]
		return id, ok
	}
	return 0, false
}

func (c *compiler) resolveJoins(d *Draft) {
	m := c.model

	for name, edge := range d.Interfaces {
		if _, ok := m.edgeByName[edge]; !ok {
			c.fail("interface "+name, "references unknown edge", edge)
		}
	}

	seen := make(map[string]bool)
	for i, j := range d.Joins {
		subject := "join " + j.Name
		if seen[j.Name] {
			c.fail(subject, "duplicate join name", nil)
		}
		seen[j.Name] = true

		from, okFrom := c.resolveEndpoint(d, j.From)
		to, okTo := c.resolveEndpoint(d, j.To)
		if !okFrom {
			c.fail(subject, "unknown source edge", j.From)
		}
		if !okTo {
			c.fail(subject, "unknown target edge", j.To)
		}
		if okFrom && m.edges[from].Kind != domain.EdgeKeyword {
			c.fail(subject, "source edge is not a keyword edge", j.From)
		}
		if okTo && m.edges[to].Kind != domain.EdgeKeyword {
			c.fail(subject, "target edge is not a keyword edge", j.To)
		}
		if err := schema.Validate(j.Schema); err != nil {
			for _, e := range schema.ValidationErrors(err) {
				c.fail(subject, e.Error(), nil)
			}
		}
		if !okFrom || !okTo {
			continue
		}

		m.joins = append(m.joins, &domain.JoinSpec{
			ID:          i,
			Name:        j.Name,
			From:        from,
			To:          to,
			Cardinality: j.Cardinality,
			Remote:      j.Remote,
			Schema:      slices.Clone(j.Schema),
		})
	}
}
