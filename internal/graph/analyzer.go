// Package graph provides dependency graph analysis for the feature backlog.
//
// The backlog forms a directed graph where an edge A → B means "A depends
// on B". This package detects cycles in that graph, computes the set of
// features ready for scheduling, and renders a text visualization.
//
// Import rules:
//   - CAN import: internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/backlog, internal/scheduler, internal/cli
package graph

import (
	"fmt"
	"strings"

	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

// Cycle is an ordered sequence of feature IDs forming a dependency cycle.
// The sequence returns to its start: the last element equals the first
// (e.g., [A, B, C, A]).
type Cycle []string

// String renders the cycle as "A -> B -> C -> A".
func (c Cycle) String() string {
	return strings.Join(c, " -> ")
}

// IntegrityWarning reports a feature dependency that references a
// nonexistent feature ID. The affected feature is permanently not-ready
// until the data is fixed externally.
type IntegrityWarning struct {
	// FeatureID is the feature carrying the bad reference.
	FeatureID string

	// MissingDependency is the dependency ID that does not resolve.
	MissingDependency string
}

// String renders the warning for display.
func (w IntegrityWarning) String() string {
	return fmt.Sprintf("%s depends on unknown feature %s", w.FeatureID, w.MissingDependency)
}

// Error formats the warning as a DataIntegrity error for callers that
// need to surface it.
func (w IntegrityWarning) Error() error {
	return fmt.Errorf("%w: feature %q depends on unknown feature %q",
		cadenceerrors.ErrDataIntegrity, w.FeatureID, w.MissingDependency)
}

// DetectCycles finds all dependency cycles reachable from any feature.
// Each independent circular cluster is reported exactly once; an acyclic
// backlog returns an empty slice.
//
// Cycle detection restricts edges to dependencies whose target is not yet
// passing: a passing dependency is satisfied and can no longer block the
// features that reference it, so it cannot participate in a live cycle.
//
// The traversal is a depth-first walk maintaining an on-stack marker set
// and a fully-explored marker set. Reaching a node already on the stack
// closes the stack slice from that node to the current node as a cycle.
func DetectCycles(b *domain.Backlog) []Cycle {
	adjacency, exists := buildGraph(b)

	explored := make(map[string]bool, len(b.Features))
	onStack := make(map[string]bool, len(b.Features))
	var stack []string
	var cycles []Cycle

	var dfs func(id string)
	dfs = func(id string) {
		onStack[id] = true
		stack = append(stack, id)

		for _, dep := range adjacency[id] {
			if !exists[dep] {
				// Unresolvable reference; reported by ReadySet.
				continue
			}
			if onStack[dep] {
				// Stack slice from dep to current node closes a cycle.
				start := 0
				for i, n := range stack {
					if n == dep {
						start = i
						break
					}
				}
				cycle := make(Cycle, 0, len(stack)-start+1)
				cycle = append(cycle, stack[start:]...)
				cycle = append(cycle, dep)
				cycles = append(cycles, cycle)
				continue
			}
			if !explored[dep] {
				dfs(dep)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
		explored[id] = true
	}

	// Walk in insertion order so cycle reporting is deterministic.
	for i := range b.Features {
		id := b.Features[i].ID
		if !explored[id] {
			dfs(id)
		}
	}

	return cycles
}

// ReadySet returns the features eligible for scheduling: unpassed features
// whose every dependency resolves to a passing feature. The result
// preserves backlog insertion order.
//
// A feature with an unresolvable dependency is never ready; each such
// reference is returned as a data-integrity warning rather than being
// silently skipped.
func ReadySet(b *domain.Backlog) ([]domain.Feature, []IntegrityWarning) {
	_, exists := buildGraph(b)

	passing := make(map[string]bool, len(b.Features))
	for i := range b.Features {
		if b.Features[i].Passes {
			passing[b.Features[i].ID] = true
		}
	}

	var ready []domain.Feature
	var warnings []IntegrityWarning

	for i := range b.Features {
		f := b.Features[i]
		if f.Passes {
			continue
		}

		eligible := true
		for _, dep := range f.Dependencies {
			if !exists[dep] {
				warnings = append(warnings, IntegrityWarning{FeatureID: f.ID, MissingDependency: dep})
				eligible = false
				continue
			}
			if !passing[dep] {
				eligible = false
			}
		}
		if eligible {
			ready = append(ready, f)
		}
	}

	return ready, warnings
}

// buildGraph returns the adjacency list (feature → dependencies, edges to
// unpassed targets only) and the set of known feature IDs.
func buildGraph(b *domain.Backlog) (adjacency map[string][]string, exists map[string]bool) {
	exists = make(map[string]bool, len(b.Features))
	passing := make(map[string]bool, len(b.Features))
	for i := range b.Features {
		exists[b.Features[i].ID] = true
		if b.Features[i].Passes {
			passing[b.Features[i].ID] = true
		}
	}

	adjacency = make(map[string][]string, len(b.Features))
	for i := range b.Features {
		f := &b.Features[i]
		for _, dep := range f.Dependencies {
			if passing[dep] {
				continue // satisfied edge, cannot block or cycle
			}
			adjacency[f.ID] = append(adjacency[f.ID], dep)
		}
	}
	return adjacency, exists
}
