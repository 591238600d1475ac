package graph

import (
	"fmt"
	"strings"

	"github.com/mrz1836/cadence/internal/domain"
)

// Visualize renders a human-readable view of the dependency graph:
// root features first, then dependent features with per-edge satisfaction
// markers, then a ready/blocked summary. Display only — no effect on
// scheduling decisions.
func Visualize(b *domain.Backlog) string {
	_, exists := buildGraph(b)
	passing := make(map[string]bool, len(b.Features))
	for i := range b.Features {
		if b.Features[i].Passes {
			passing[b.Features[i].ID] = true
		}
	}

	readyIDs := make(map[string]bool)
	ready, warnings := ReadySet(b)
	for i := range ready {
		readyIDs[ready[i].ID] = true
	}

	var sb strings.Builder
	sb.WriteString("Dependency Graph\n")
	sb.WriteString("================\n\n")

	sb.WriteString("Root features (no dependencies):\n")
	for i := range b.Features {
		f := &b.Features[i]
		if len(f.Dependencies) == 0 {
			sb.WriteString(fmt.Sprintf("  %s (priority: %s)%s\n", f.ID, f.Priority, statusSuffix(f, readyIDs)))
		}
	}

	sb.WriteString("\nDependent features:\n")
	for i := range b.Features {
		f := &b.Features[i]
		if len(f.Dependencies) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s (priority: %s)%s\n", f.ID, f.Priority, statusSuffix(f, readyIDs)))
		for _, dep := range f.Dependencies {
			marker := "✗"
			note := "pending"
			switch {
			case !exists[dep]:
				note = "unknown feature"
			case passing[dep]:
				marker = "✓"
				note = "satisfied"
			}
			sb.WriteString(fmt.Sprintf("    %s depends on %s (%s)\n", marker, dep, note))
		}
	}

	total, done := b.Counts()
	sb.WriteString(fmt.Sprintf("\nSummary: %d features, %d passing, %d ready\n", total, done, len(ready)))

	if cycles := DetectCycles(b); len(cycles) > 0 {
		sb.WriteString("\nCycles detected:\n")
		for _, c := range cycles {
			sb.WriteString("  " + c.String() + "\n")
		}
	}
	for _, w := range warnings {
		sb.WriteString("\nWarning: " + w.String() + "\n")
	}

	return sb.String()
}

// statusSuffix annotates a node as passed, ready, or blocked.
func statusSuffix(f *domain.Feature, readyIDs map[string]bool) string {
	switch {
	case f.Passes:
		return " [passed]"
	case readyIDs[f.ID]:
		return " [ready]"
	default:
		return " [blocked]"
	}
}
