package domain

// EdgeID addresses an edge in a graph model arena.
type EdgeID int

// EdgeKind defines how an edge is traversed.
type EdgeKind int

const (
	// EdgeKeyword consumes one line whose keyword contains the edge keyword.
	EdgeKeyword EdgeKind = iota
	// EdgeCall enters a callable sub-automaton and returns to its target node
	// once the sub-automaton reaches an end node.
	EdgeCall
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeKeyword:
		return "keyword"
	case EdgeCall:
		return "call"
	default:
		return "unknown"
	}
}

// Edge defines a transition from one node to another.
type Edge struct {
	ID   EdgeID   `json:"id"`
	Name string   `json:"name"`
	Kind EdgeKind `json:"kind"`

	From NodeID `json:"from"`
	// To is the destination for keyword edges and the return node for call edges.
	To NodeID `json:"to"`

	Keyword string `json:"keyword,omitempty"`

	// Callee is the fragment entered by a call edge.
	Callee FragmentID `json:"callee,omitempty"`
}
