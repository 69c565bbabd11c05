package domain

// NodeID addresses a node in a graph model arena.
type NodeID int

// FragmentID addresses a fragment (an independently built automaton) in a graph model arena.
type FragmentID int

// NoNode marks the absence of a node.
const NoNode NodeID = -1

// Node represents an automaton state.
type Node struct {
	ID   NodeID `json:"id"`
	Name string `json:"name"`

	// Fragment is the owning fragment. Fragment merges reassign it.
	Fragment FragmentID `json:"fragment"`

	Start bool `json:"start,omitempty"`
	End   bool `json:"end,omitempty"`

	// RequestStart marks start nodes whose threads open a request.
	RequestStart bool `json:"request_start,omitempty"`

	// RequestState labels end nodes that terminate a request (e.g. "SUCCESS").
	RequestState string `json:"request_state,omitempty"`

	// Marks are non-terminal labels collected by threads passing through the node.
	Marks []string `json:"marks,omitempty"`

	// Out lists outgoing edges in declaration order (first match wins).
	Out []EdgeID `json:"out,omitempty"`
}

// IsTerminal reports whether reaching the node ends a request.
func (n *Node) IsTerminal() bool {
	return n.End && n.RequestState != ""
}
