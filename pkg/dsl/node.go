package dsl

import (
	"fmt"

	"github.com/aretw0/stitch/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	builder  *Builder
	fragment *FragmentBuilder
	id       domain.NodeID
}

func (n *NodeBuilder) node() *domain.Node {
	return &n.builder.draft.Nodes[n.id]
}

func (n *NodeBuilder) problem(format string, args ...any) {
	n.builder.draft.Problems = append(n.builder.draft.Problems,
		fmt.Errorf("node %s: "+format, append([]any{n.node().Name}, args...)...))
}

// Start marks the node as a start node of its fragment.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.node().Start = true
	return n
}

// RequestStart marks the node as a start node whose threads open a request.
func (n *NodeBuilder) RequestStart() *NodeBuilder {
	node := n.node()
	node.Start = true
	node.RequestStart = true
	return n
}

// End marks the node as an end node of its fragment.
func (n *NodeBuilder) End() *NodeBuilder {
	n.node().End = true
	return n
}

// Terminal marks the node as an end node that terminates a request with state.
func (n *NodeBuilder) Terminal(state string) *NodeBuilder {
	node := n.node()
	if node.RequestState != "" && node.RequestState != state {
		n.problem("conflicting request states %q and %q", node.RequestState, state)
		return n
	}
	node.End = true
	node.RequestState = state
	return n
}

// Mark attaches a non-terminal label collected by threads passing through the node.
func (n *NodeBuilder) Mark(label string) *NodeBuilder {
	node := n.node()
	node.Marks = append(node.Marks, label)
	return n
}

// On adds a keyword edge named "<fragment>.<keyword>".
func (n *NodeBuilder) On(keyword, target string) *NodeBuilder {
	return n.Edge(n.builder.edgeName(n.fragment.name()+"."+keyword), keyword, target)
}

// Edge adds a keyword edge with an explicit name.
func (n *NodeBuilder) Edge(name, keyword, target string) *NodeBuilder {
	if name != "" {
		n.builder.edgeNames[name]++
	}
	to := n.builder.node(target, n.fragment.id)
	n.builder.draft.AddEdge(domain.Edge{
		Name:    name,
		Kind:    domain.EdgeKeyword,
		From:    n.id,
		To:      to,
		Keyword: keyword,
	})
	return n
}

// Call adds a call edge into fragment that resumes at target.
func (n *NodeBuilder) Call(fragment, target string) *NodeBuilder {
	return n.CallNamed(n.builder.edgeName(n.fragment.name()+".call."+fragment), fragment, target)
}

// CallNamed adds a call edge with an explicit name.
func (n *NodeBuilder) CallNamed(name, fragment, target string) *NodeBuilder {
	if name != "" {
		n.builder.edgeNames[name]++
	}
	callee := n.builder.fragment(fragment)
	to := n.builder.node(target, n.fragment.id)
	n.builder.draft.AddEdge(domain.Edge{
		Name:   name,
		Kind:   domain.EdgeCall,
		From:   n.id,
		To:     to,
		Callee: callee,
	})
	return n
}
