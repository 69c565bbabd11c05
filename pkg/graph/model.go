package graph

import (
	"sort"

	"github.com/aretw0/stitch/pkg/domain"
)

// Model is the validated, immutable Graph Schema Model.
type Model struct {
	nodes     []domain.Node
	edges     []domain.Edge
	fragments []Fragment
	owner     []domain.FragmentID

	components     map[string][]domain.NodeID
	componentNames []string

	joins      []*domain.JoinSpec
	edgeByName map[string]domain.EdgeID
	nodeByName map[string]domain.NodeID
	fragByName map[string]domain.FragmentID
}

// Node returns the node at id. The result must not be modified.
func (m *Model) Node(id domain.NodeID) *domain.Node {
	return &m.nodes[id]
}

// Edge returns the edge at id. The result must not be modified.
func (m *Model) Edge(id domain.EdgeID) *domain.Edge {
	return &m.edges[id]
}

// NumNodes returns the arena size for nodes.
func (m *Model) NumNodes() int { return len(m.nodes) }

// NumEdges returns the arena size for edges.
func (m *Model) NumEdges() int { return len(m.edges) }

// NodeByName resolves a node by its global name.
func (m *Model) NodeByName(name string) (domain.NodeID, bool) {
	id, ok := m.nodeByName[name]
	return id, ok
}

// EdgeByName resolves an edge by its unique name.
func (m *Model) EdgeByName(name string) (domain.EdgeID, bool) {
	id, ok := m.edgeByName[name]
	return id, ok
}

// Fragment returns the fragment that owns id after merges.
func (m *Model) Fragment(id domain.FragmentID) *Fragment {
	return &m.fragments[m.owner[id]]
}

// FragmentOf returns the fragment owning a node.
func (m *Model) FragmentOf(n domain.NodeID) *Fragment {
	return m.Fragment(m.nodes[n].Fragment)
}

// FragmentByName resolves a fragment by its name or any merged alias.
func (m *Model) FragmentByName(name string) (*Fragment, bool) {
	id, ok := m.fragByName[name]
	if !ok {
		return nil, false
	}
	return m.Fragment(id), true
}

// FragmentStarts returns the start nodes of a callable fragment.
func (m *Model) FragmentStarts(id domain.FragmentID) []domain.NodeID {
	return m.Fragment(id).Starts
}

// Starts returns the start nodes registered for a component, in registration order.
func (m *Model) Starts(component string) ([]domain.NodeID, bool) {
	starts, ok := m.components[component]
	return starts, ok
}

// Components returns the registered component names, sorted.
func (m *Model) Components() []string {
	return m.componentNames
}

// IsShared reports whether a node belongs to a shared fragment.
func (m *Model) IsShared(n domain.NodeID) bool {
	return m.FragmentOf(n).Shared
}

// Joins returns the join declarations in declaration order.
func (m *Model) Joins() []*domain.JoinSpec {
	return m.joins
}

// EdgeNames returns every edge name, sorted.
func (m *Model) EdgeNames() []string {
	names := make([]string, 0, len(m.edges))
	for _, e := range m.edges {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Fragments returns the fragments left after merges, in declaration order.
func (m *Model) Fragments() []*Fragment {
	var out []*Fragment
	for i := range m.fragments {
		if m.owner[i] == domain.FragmentID(i) {
			out = append(out, &m.fragments[i])
		}
	}
	return out
}
