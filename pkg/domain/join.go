package domain

import (
	"fmt"
	"strings"

	"github.com/aretw0/stitch/pkg/schema"
)

// Cardinality bounds how many partners one side of a join may have.
type Cardinality int

const (
	// One consumes both sides: each Pace is matched at most once per role.
	One Cardinality = iota
	// All links a source to every matching target.
	All
	// Any links a source to its first matching target; targets may be reused.
	Any
)

func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case All:
		return "all"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("cardinality(%d)", int(c))
	}
}

// ParseCardinality converts "one", "all" or "any" (case-insensitive).
func ParseCardinality(text string) (Cardinality, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "one":
		return One, nil
	case "all":
		return All, nil
	case "any":
		return Any, nil
	default:
		return One, fmt.Errorf("unknown cardinality %q", text)
	}
}

// JoinType classifies a join link by the placement of its endpoints.
type JoinType string

const (
	JoinLocal       JoinType = "local"        // non-remote declaration, same host
	JoinLocalRemote JoinType = "local_remote" // remote declaration, endpoints on the same host
	JoinRemote      JoinType = "remote"       // endpoints on different hosts, subject to clock correction
)

// JoinSpec declares a causal link from an emitting edge to a receiving edge.
type JoinSpec struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	From        EdgeID        `json:"from"`
	To          EdgeID        `json:"to"`
	Cardinality Cardinality   `json:"cardinality"`
	Remote      bool          `json:"remote,omitempty"`
	Schema      schema.Schema `json:"schema,omitempty"`
}
