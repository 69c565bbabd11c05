package replay

import (
	"slices"

	"github.com/aretw0/stitch/pkg/domain"
)

// Cursor is the resumable replay position: the current node and the call edges
// waiting for their sub-automaton to end. It is a value; push and pop never
// alias the stack of another cursor.
type Cursor struct {
	Node  domain.NodeID
	Stack []domain.EdgeID
}

// Depth returns the number of pending returns.
func (c Cursor) Depth() int {
	return len(c.Stack)
}

func (c Cursor) at(n domain.NodeID) Cursor {
	return Cursor{Node: n, Stack: c.Stack}
}

func (c Cursor) push(call domain.EdgeID) Cursor {
	stack := make([]domain.EdgeID, len(c.Stack), len(c.Stack)+1)
	copy(stack, c.Stack)
	return Cursor{Node: c.Node, Stack: append(stack, call)}
}

func (c Cursor) pop() (Cursor, domain.EdgeID) {
	top := c.Stack[len(c.Stack)-1]
	return Cursor{Node: c.Node, Stack: slices.Clone(c.Stack[:len(c.Stack)-1])}, top
}
