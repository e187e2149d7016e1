// # internal/output/dot.go
package output

import (
	"fmt"
	"strings"

	"importlens/internal/graph"
)

type DOTGenerator struct {
	graph *graph.Graph
}

func NewDOTGenerator(g *graph.Graph) *DOTGenerator {
	return &DOTGenerator{graph: g}
}

func (d *DOTGenerator) Generate(cycles [][]string) (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph modules {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	// Build cycle edge set for highlighting
	cycleEdges := make(map[string]map[string]bool)
	cycleNodes := make(map[string]bool)
	for _, cycle := range cycles {
		for i := 0; i < len(cycle); i++ {
			from := cycle[i]
			to := cycle[(i+1)%len(cycle)]
			if cycleEdges[from] == nil {
				cycleEdges[from] = make(map[string]bool)
			}
			cycleEdges[from][to] = true
			cycleNodes[from] = true
		}
	}

	nodes := d.graph.Nodes()
	internal := make(map[string]bool)
	for _, n := range nodes {
		if !n.External {
			internal[n.Path] = true
		}
	}

	// Local assets cluster
	buf.WriteString("  subgraph cluster_assets {\n")
	buf.WriteString("    label=\"Assets\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")

	for _, n := range nodes {
		if n.External {
			continue
		}
		if cycleNodes[n.Path] {
			buf.WriteString(fmt.Sprintf("    \"%s\" [fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", n.Path))
		} else {
			buf.WriteString(fmt.Sprintf("    \"%s\" [color=\"darkslategrey\"];\n", n.Path))
		}
	}
	buf.WriteString("  }\n\n")

	// External requests
	buf.WriteString("  // External requests\n")
	buf.WriteString("  node [fillcolor=\"gainsboro\", style=\"rounded,filled\", color=\"grey\"];\n")
	for _, n := range nodes {
		if n.External {
			buf.WriteString(fmt.Sprintf("  \"%s\";\n", n.Path))
		}
	}
	buf.WriteString("\n")

	// Edges
	for _, e := range d.graph.Edges() {
		isCycle := cycleEdges[e.From] != nil && cycleEdges[e.From][e.To]
		switch {
		case isCycle:
			buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", e.From, e.To))
		case internal[e.From] && internal[e.To]:
			style := "color=\"forestgreen\", penwidth=1.8"
			if e.Dynamic {
				style += ", style=dotted, label=\"dynamic\""
			}
			buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [%s];\n", e.From, e.To, style))
		default:
			buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"grey\", style=dashed];\n", e.From, e.To))
		}
	}

	// Legend
	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_asset [label=\"Asset\", fillcolor=\"white\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_external [label=\"External Request\", fillcolor=\"gainsboro\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_cycle [label=\"Import Cycle\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_edge_static [label=\"Static Import\", shape=plaintext, fontcolor=\"forestgreen\"];\n")
	buf.WriteString("    legend_edge_external [label=\"External Edge\", shape=plaintext, fontcolor=\"grey\"];\n")
	buf.WriteString("  }\n")

	buf.WriteString("}\n")

	return buf.String(), nil
}
