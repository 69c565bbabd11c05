package graph

import (
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/schema"
)

// Fragment is an independently built automaton.
type Fragment struct {
	ID   domain.FragmentID `json:"id"`
	Name string            `json:"name"`
	// Aliases lists the names of fragments merged into this one.
	Aliases []string `json:"aliases,omitempty"`
	Shared  bool     `json:"shared,omitempty"`

	Nodes  []domain.NodeID `json:"nodes"`
	Starts []domain.NodeID `json:"starts"`
	Ends   []domain.NodeID `json:"ends"`
}

// Component registers the fragments whose start nodes open threads of one component.
type Component struct {
	Name      string
	Fragments []domain.FragmentID
}

// JoinDraft is a join declaration whose endpoints are still edge or interface names.
type JoinDraft struct {
	Name        string
	From        string
	To          string
	Cardinality domain.Cardinality
	Remote      bool
	Schema      schema.Schema
}

// Draft is the mutable arena a builder fills before Compile.
type Draft struct {
	Nodes      []domain.Node
	Edges      []domain.Edge
	Fragments  []Fragment
	Components []Component
	// Interfaces maps exported interface names to edge names.
	Interfaces map[string]string
	Joins      []JoinDraft
	// Problems collects definition errors detected while building.
	Problems []error

	owner []domain.FragmentID
}

// NewDraft creates an empty arena.
func NewDraft() *Draft {
	return &Draft{Interfaces: make(map[string]string)}
}

// AddFragment appends a fragment and returns its index.
func (d *Draft) AddFragment(name string) domain.FragmentID {
	id := domain.FragmentID(len(d.Fragments))
	d.Fragments = append(d.Fragments, Fragment{ID: id, Name: name})
	d.owner = append(d.owner, id)
	return id
}

// AddNode appends a node owned by fragment f and returns its index.
func (d *Draft) AddNode(name string, f domain.FragmentID) domain.NodeID {
	id := domain.NodeID(len(d.Nodes))
	d.Nodes = append(d.Nodes, domain.Node{ID: id, Name: name, Fragment: f})
	return id
}

// AddEdge appends an edge, registers it on its source node and returns its index.
func (d *Draft) AddEdge(e domain.Edge) domain.EdgeID {
	e.ID = domain.EdgeID(len(d.Edges))
	d.Edges = append(d.Edges, e)
	d.Nodes[e.From].Out = append(d.Nodes[e.From].Out, e.ID)
	return e.ID
}

// Owner resolves the fragment that currently owns f.
func (d *Draft) Owner(f domain.FragmentID) domain.FragmentID {
	for d.owner[f] != f {
		d.owner[f] = d.owner[d.owner[f]]
		f = d.owner[f]
	}
	return f
}

// Merge joins two fragments. The lower index survives and takes over the other's
// nodes by owner reassignment; nothing is moved.
func (d *Draft) Merge(a, b domain.FragmentID) domain.FragmentID {
	ra, rb := d.Owner(a), d.Owner(b)
	if ra == rb {
		return ra
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	d.owner[rb] = ra
	keep, gone := &d.Fragments[ra], &d.Fragments[rb]
	keep.Aliases = append(keep.Aliases, gone.Name)
	keep.Aliases = append(keep.Aliases, gone.Aliases...)
	keep.Shared = keep.Shared || gone.Shared
	return ra
}
