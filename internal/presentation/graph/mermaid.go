package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/graph"
)

// Overlay carries run data to highlight on the diagram.
type Overlay struct {
	// SeenEdges counts matches per edge name, as in a replay report.
	SeenEdges map[string]int
}

// GenerateMermaid produces a Mermaid flowchart of a graph model.
// Every fragment becomes a subgraph. Node shapes:
// - Request start: ((Circle))
// - Start: ([Stadium])
// - Terminal: [[Subroutine]]
// - End: [/Parallelogram/]
// - Default: [Rectangle]
// Call edges and local joins are drawn dotted, remote joins thick.
// With an overlay, both ends of every matched edge get the "visited" class.
func GenerateMermaid(m *graph.Model, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, f := range m.Fragments() {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID("frag_"+f.Name), fragmentLabel(f))
		for _, id := range f.Nodes {
			n := m.Node(id)
			opener, closer := nodeShape(n)
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", sanitizeMermaidID(n.Name), opener, nodeLabel(n), closer)
		}
		sb.WriteString("    end\n")
	}

	for id := range m.NumEdges() {
		e := m.Edge(domain.EdgeID(id))
		from := sanitizeMermaidID(m.Node(e.From).Name)
		to := sanitizeMermaidID(m.Node(e.To).Name)
		switch e.Kind {
		case domain.EdgeCall:
			callee := m.Fragment(e.Callee).Name
			fmt.Fprintf(&sb, "    %s -. \"call %s\" .-> %s\n", from, escape(callee), to)
		default:
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escape(e.Keyword), to)
		}
	}

	for _, j := range m.Joins() {
		from := sanitizeMermaidID(m.Node(m.Edge(j.From).To).Name)
		to := sanitizeMermaidID(m.Node(m.Edge(j.To).To).Name)
		arrow := "-.->"
		if j.Remote {
			arrow = "==>"
		}
		fmt.Fprintf(&sb, "    %s %s|\"%s\"| %s\n", from, arrow, escape(j.Name), to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		visited := make(map[string]bool)
		for id := range m.NumEdges() {
			e := m.Edge(domain.EdgeID(id))
			if overlay.SeenEdges[e.Name] == 0 {
				continue
			}
			for _, n := range []domain.NodeID{e.From, e.To} {
				safeID := sanitizeMermaidID(m.Node(n).Name)
				if !visited[safeID] {
					visited[safeID] = true
					fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
				}
			}
		}
	}

	return sb.String()
}

func nodeShape(n *domain.Node) (string, string) {
	switch {
	case n.RequestStart:
		return "((", "))"
	case n.Start:
		return "([", "])"
	case n.IsTerminal():
		return "[[", "]]"
	case n.End:
		return "[/", "/]"
	}
	return "[", "]"
}

func nodeLabel(n *domain.Node) string {
	label := escape(n.Name)
	if n.RequestState != "" {
		label += " <br/> " + escape(n.RequestState)
	}
	return label
}

func fragmentLabel(f *graph.Fragment) string {
	label := f.Name
	if f.Shared {
		label += " (shared)"
	}
	return escape(label)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "#", "_")
	return s
}
