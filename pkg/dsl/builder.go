package dsl

import (
	"fmt"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
)

// Builder manages the graph construction.
type Builder struct {
	draft     *graph.Draft
	fragments map[string]domain.FragmentID
	nodes     map[string]domain.NodeID
	edgeNames map[string]int
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		draft:     graph.NewDraft(),
		fragments: make(map[string]domain.FragmentID),
		nodes:     make(map[string]domain.NodeID),
		edgeNames: make(map[string]int),
	}
}

// Fragment returns the builder for the named fragment, creating it on first use.
func (b *Builder) Fragment(name string) *FragmentBuilder {
	return &FragmentBuilder{builder: b, id: b.fragment(name)}
}

func (b *Builder) fragment(name string) domain.FragmentID {
	if id, ok := b.fragments[name]; ok {
		return id
	}
	id := b.draft.AddFragment(name)
	b.fragments[name] = id
	return id
}

// node resolves a node by name. A node first seen here is created in f;
// a node already owned by another fragment merges that fragment into f.
func (b *Builder) node(name string, f domain.FragmentID) domain.NodeID {
	if id, ok := b.nodes[name]; ok {
		b.draft.Merge(b.draft.Nodes[id].Fragment, f)
		return id
	}
	id := b.draft.AddNode(name, f)
	b.nodes[name] = id
	return id
}

// edgeName returns base if unused, otherwise base#2, base#3...
func (b *Builder) edgeName(base string) string {
	b.edgeNames[base]++
	if n := b.edgeNames[base]; n > 1 {
		name := fmt.Sprintf("%s#%d", base, n)
		b.edgeNames[name]++
		return name
	}
	return base
}

// Thread registers the fragments whose start nodes open threads of a component.
func (b *Builder) Thread(component string, fragments ...string) *Builder {
	c := graph.Component{Name: component}
	for _, name := range fragments {
		c.Fragments = append(c.Fragments, b.fragment(name))
	}
	b.draft.Components = append(b.draft.Components, c)
	return b
}

// Shared marks a fragment as shared: its threads serve several requests.
func (b *Builder) Shared(fragment string) *Builder {
	b.draft.Fragments[b.fragment(fragment)].Shared = true
	return b
}

// Merge declares that two fragments describe the same automaton.
func (b *Builder) Merge(a, c string) *Builder {
	b.draft.Merge(b.fragment(a), b.fragment(c))
	return b
}

// Interface exports an edge under a stable name that joins can reference.
func (b *Builder) Interface(name, edge string) *Builder {
	b.draft.Interfaces[name] = edge
	return b
}

// Join starts a join declaration. The default cardinality is One.
func (b *Builder) Join(name string) *JoinBuilder {
	b.draft.Joins = append(b.draft.Joins, graph.JoinDraft{Name: name, Cardinality: domain.One})
	return &JoinBuilder{builder: b, index: len(b.draft.Joins) - 1}
}

// Build validates the definitions and freezes them into a Model.
func (b *Builder) Build() (*graph.Model, error) {
	return graph.Compile(b.draft)
}

// FragmentBuilder adds nodes to one fragment.
type FragmentBuilder struct {
	builder *Builder
	id      domain.FragmentID
}

// Node returns the builder for the named node. Node names are global to the builder.
func (f *FragmentBuilder) Node(name string) *NodeBuilder {
	return &NodeBuilder{builder: f.builder, fragment: f, id: f.builder.node(name, f.id)}
}

func (f *FragmentBuilder) name() string {
	return f.builder.draft.Fragments[f.id].Name
}
