package graph

import (
	"fmt"
	"strings"

	"github.com/mrz1836/cadence/internal/domain"
)

// ExportDOT renders the backlog as a Graphviz digraph for external
// visualization. Passing features are filled gray, pending features blue;
// edges point from a dependency to the feature that requires it.
func ExportDOT(b *domain.Backlog) string {
	var sb strings.Builder
	sb.WriteString("digraph FeatureDependencies {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=rounded];\n\n")

	// Nodes grouped by pass state so completed work clusters visually.
	writeDOTNodes(&sb, b, true, "lightgray")
	writeDOTNodes(&sb, b, false, "lightblue")
	sb.WriteString("\n")

	for i := range b.Features {
		f := &b.Features[i]
		for _, dep := range f.Dependencies {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", dep, f.ID))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// writeDOTNodes emits node declarations for features matching the pass state.
func writeDOTNodes(sb *strings.Builder, b *domain.Backlog, passes bool, fill string) {
	for i := range b.Features {
		f := &b.Features[i]
		if f.Passes != passes {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %q [label=\"%s\\n(%s)\", style=\"rounded,filled\", fillcolor=%s];\n",
			f.ID, f.ID, f.Priority, fill))
	}
}
