package schema

import (
	"fmt"
	"strings"
)

// RequestKey is the reserved variable holding a request identifier.
const RequestKey = "request"

// Pair binds a variable of the emitting event to a variable of the receiving event.
type Pair struct {
	From string
	To   string
}

// Key creates a pair that compares the same variable on both sides.
func Key(name string) Pair {
	return Pair{From: name, To: name}
}

// String renders the pair in its textual form ("tid" or "req_id=request").
func (p Pair) String() string {
	if p.From == p.To {
		return p.From
	}
	return p.From + "=" + p.To
}

// Schema is the ordered list of key pairs a join compares.
type Schema []Pair

// String renders the schema as a comma separated list of pairs.
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

// Lookup resolves a variable by name.
type Lookup interface {
	Get(name string) (string, bool)
}

// scopeKeys are the reserved variables a schema may pin to narrow candidate search.
var scopeKeys = []string{"host", "target", "thread"}

// Scope returns the first reserved placement key compared against itself.
// Callers use it to pre-index receiving events instead of scanning all of them.
func (s Schema) Scope() (string, bool) {
	for _, p := range s {
		if p.From != p.To {
			continue
		}
		for _, k := range scopeKeys {
			if p.From == k {
				return k, true
			}
		}
	}
	return "", false
}

// ParsePair converts "a" or "a=b" into a Pair.
func ParsePair(text string) (Pair, error) {
	from, to, found := strings.Cut(strings.TrimSpace(text), "=")
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if !found {
		to = from
	}
	if from == "" || to == "" {
		return Pair{}, fmt.Errorf("invalid key pair %q", text)
	}
	return Pair{From: from, To: to}, nil
}

// Parse converts a list of textual pairs into a Schema.
// Example: []string{"tid", "req_id=request"}
func Parse(pairs []string) (Schema, error) {
	result := make(Schema, 0, len(pairs))
	for _, text := range pairs {
		p, err := ParsePair(text)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}
