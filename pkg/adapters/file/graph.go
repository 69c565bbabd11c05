package file

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/dsl"
	"github.com/aretw0/stitch/pkg/graph"
	"github.com/aretw0/stitch/pkg/schema"
)

// GraphFile is the document layout of a graph definition.
type GraphFile struct {
	Fragments  []FragmentDef       `mapstructure:"fragments"`
	Components map[string][]string `mapstructure:"components"`
	Interfaces map[string]string   `mapstructure:"interfaces"`
	Merges     [][]string          `mapstructure:"merges"`
	Joins      []JoinDef           `mapstructure:"joins"`
}

// FragmentDef declares one fragment and its nodes.
type FragmentDef struct {
	Name   string    `mapstructure:"name"`
	Shared bool      `mapstructure:"shared"`
	Nodes  []NodeDef `mapstructure:"nodes"`
}

// NodeDef declares a node. A state implies an end node; request_start implies a start node.
type NodeDef struct {
	Name         string    `mapstructure:"name"`
	Start        bool      `mapstructure:"start"`
	RequestStart bool      `mapstructure:"request_start"`
	End          bool      `mapstructure:"end"`
	State        string    `mapstructure:"state"`
	Marks        []string  `mapstructure:"marks"`
	Edges        []EdgeDef `mapstructure:"edges"`
}

// EdgeDef declares a keyword edge (on) or a call edge (call).
type EdgeDef struct {
	Name string `mapstructure:"name"`
	On   string `mapstructure:"on"`
	Call string `mapstructure:"call"`
	To   string `mapstructure:"to"`
}

// JoinDef declares a join. Schema accepts a list of pairs or a comma separated string.
type JoinDef struct {
	Name        string        `mapstructure:"name"`
	From        string        `mapstructure:"from"`
	To          string        `mapstructure:"to"`
	Cardinality string        `mapstructure:"cardinality"`
	Remote      bool          `mapstructure:"remote"`
	Schema      schema.Schema `mapstructure:"schema"`
}

// LoadGraph reads and compiles a graph definition file.
func LoadGraph(path string) (*graph.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def.Build()
}

// Parse decodes a YAML (or JSON) graph document.
func Parse(data []byte) (*GraphFile, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}

	var def GraphFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       schemaHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &def,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	return &def, nil
}

var schemaType = reflect.TypeOf(schema.Schema{})

// schemaHook converts "a,b=c" or ["a", "b=c"] into a schema.Schema.
func schemaHook(from, to reflect.Type, data any) (any, error) {
	if to != schemaType {
		return data, nil
	}
	var pairs []string
	switch v := data.(type) {
	case string:
		pairs = strings.FieldsFunc(v, func(r rune) bool { return r == ',' })
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("schema pair must be a string, got %T", item)
			}
			pairs = append(pairs, s)
		}
	default:
		return data, nil
	}
	return schema.Parse(pairs)
}

// Build drives the dsl builder with the document and compiles the result.
func (g *GraphFile) Build() (*graph.Model, error) {
	b := dsl.New()

	for _, f := range g.Fragments {
		fb := b.Fragment(f.Name)
		if f.Shared {
			b.Shared(f.Name)
		}
		for _, n := range f.Nodes {
			nb := fb.Node(n.Name)
			if n.Start {
				nb.Start()
			}
			if n.RequestStart {
				nb.RequestStart()
			}
			if n.End {
				nb.End()
			}
			if n.State != "" {
				nb.Terminal(n.State)
			}
			for _, m := range n.Marks {
				nb.Mark(m)
			}
			for _, e := range n.Edges {
				if err := addEdge(nb, n.Name, e); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, pair := range g.Merges {
		if len(pair) != 2 {
			return nil, fmt.Errorf("merge needs two fragments, got %v", pair)
		}
		b.Merge(pair[0], pair[1])
	}

	components := make([]string, 0, len(g.Components))
	for name := range g.Components {
		components = append(components, name)
	}
	sort.Strings(components)
	for _, name := range components {
		b.Thread(name, g.Components[name]...)
	}

	for name, edge := range g.Interfaces {
		b.Interface(name, edge)
	}

	for _, j := range g.Joins {
		card, err := domain.ParseCardinality(j.Cardinality)
		if err != nil {
			return nil, fmt.Errorf("join %s: %w", j.Name, err)
		}
		jb := b.Join(j.Name).From(j.From).To(j.To).Cardinality(card)
		if j.Remote {
			jb.Remote()
		}
		for _, p := range j.Schema {
			jb.On(p.From, p.To)
		}
	}

	return b.Build()
}

func addEdge(nb *dsl.NodeBuilder, node string, e EdgeDef) error {
	switch {
	case e.On != "" && e.Call != "":
		return fmt.Errorf("node %s: edge to %s has both on and call", node, e.To)
	case e.Call != "" && e.Name != "":
		nb.CallNamed(e.Name, e.Call, e.To)
	case e.Call != "":
		nb.Call(e.Call, e.To)
	case e.Name != "":
		nb.Edge(e.Name, e.On, e.To)
	default:
		nb.On(e.On, e.To)
	}
	return nil
}
