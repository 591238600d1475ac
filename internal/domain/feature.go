// Package domain provides shared domain types for the CADENCE scheduling system.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"fmt"
	"strings"

	"github.com/mrz1836/cadence/internal/constants"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

// Priority is the scheduling priority class of a feature.
type Priority string

// Priority constants, ordered from most to least urgent.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ValidPriorities returns all valid priority values in scheduling order.
func ValidPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// IsValid checks if the priority is a valid value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank returns the numeric scheduling rank of the priority.
// Lower rank schedules first: critical=0, high=1, medium=2, low=3.
// Unknown priorities rank after medium, matching the original backlog
// semantics where a missing priority defaults to medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Feature represents one unit of work in the project backlog.
//
// Example JSON representation:
//
//	{
//	    "id": "feat-auth-login",
//	    "category": "authentication",
//	    "priority": "critical",
//	    "description": "Users can log in with email and password",
//	    "steps": ["Open /login", "Submit valid credentials", "Expect redirect to /home"],
//	    "dependencies": ["feat-user-model"],
//	    "passes": false,
//	    "complexity": "medium"
//	}
type Feature struct {
	// ID is the unique, stable identifier for the feature.
	ID string `json:"id"`

	// Category is a free-form classification label (e.g., "authentication").
	Category string `json:"category,omitempty"`

	// Priority determines scheduling order within the ready set.
	Priority Priority `json:"priority"`

	// Description is the human-readable statement of the behavior to build.
	// Opaque to the scheduler; passed through to the implement collaborator.
	Description string `json:"description"`

	// Steps are the verification steps for the feature.
	// Opaque to the scheduler; passed through to the verify collaborator.
	Steps []string `json:"steps,omitempty"`

	// Dependencies lists feature IDs that must be passing before this
	// feature becomes eligible for scheduling.
	Dependencies []string `json:"dependencies,omitempty"`

	// Passes is true only after successful implementation and verification.
	Passes bool `json:"passes"`

	// Complexity is an advisory estimate. Not used in scheduling logic.
	Complexity string `json:"complexity,omitempty"`
}

// Validate checks the feature's required fields and enumerations.
func (f *Feature) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("%w: feature id is required", cadenceerrors.ErrEmptyValue)
	}
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("%w: feature %s has no description", cadenceerrors.ErrEmptyValue, f.ID)
	}
	if !f.Priority.IsValid() {
		return fmt.Errorf("%w: %q is not one of %v", cadenceerrors.ErrInvalidPriority, f.Priority, ValidPriorities())
	}
	for _, dep := range f.Dependencies {
		if strings.TrimSpace(dep) == "" {
			return fmt.Errorf("%w: feature %s has an empty dependency id", cadenceerrors.ErrEmptyValue, f.ID)
		}
		if dep == f.ID {
			return fmt.Errorf("%w: feature %s depends on itself", cadenceerrors.ErrInvalidArgument, f.ID)
		}
	}
	return nil
}

// Backlog is the ordered collection of all features for one project.
// Insertion order is preserved for stable iteration and tie-breaking,
// but does not affect priority ordering.
type Backlog struct {
	// SchemaVersion enables forward-compatible schema migrations.
	SchemaVersion string `json:"schema_version"`

	// Project is an optional human-readable project name.
	Project string `json:"project,omitempty"`

	// Features holds all feature records in insertion order.
	Features []Feature `json:"features"`
}

// NewBacklog returns an empty backlog at the current schema version.
func NewBacklog(project string) *Backlog {
	return &Backlog{
		SchemaVersion: constants.BacklogSchemaVersion,
		Project:       project,
		Features:      []Feature{},
	}
}

// Validate checks every feature record and rejects duplicate IDs.
// Dependency resolvability is intentionally NOT checked here: an
// unresolvable dependency is a data-integrity condition reported by the
// graph analyzer, not a malformed record.
func (b *Backlog) Validate() error {
	seen := make(map[string]bool, len(b.Features))
	for i := range b.Features {
		f := &b.Features[i]
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: duplicate feature id %q", cadenceerrors.ErrInvalidArgument, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// Get returns the feature with the given ID, or ErrFeatureNotFound.
func (b *Backlog) Get(id string) (*Feature, error) {
	for i := range b.Features {
		if b.Features[i].ID == id {
			return &b.Features[i], nil
		}
	}
	return nil, fmt.Errorf("feature %q: %w", id, cadenceerrors.ErrFeatureNotFound)
}

// Counts returns the total and passing feature counts.
func (b *Backlog) Counts() (total, passing int) {
	total = len(b.Features)
	for i := range b.Features {
		if b.Features[i].Passes {
			passing++
		}
	}
	return total, passing
}

// AllPass reports whether every feature in the backlog passes.
// An empty backlog trivially passes.
func (b *Backlog) AllPass() bool {
	total, passing := b.Counts()
	return total == passing
}

// Clone returns a deep copy of the backlog. Used by checkpointing so a
// snapshot cannot be mutated through the live backlog.
func (b *Backlog) Clone() *Backlog {
	clone := &Backlog{
		SchemaVersion: b.SchemaVersion,
		Project:       b.Project,
		Features:      make([]Feature, len(b.Features)),
	}
	for i := range b.Features {
		f := b.Features[i]
		if f.Steps != nil {
			f.Steps = append([]string(nil), f.Steps...)
		}
		if f.Dependencies != nil {
			f.Dependencies = append([]string(nil), f.Dependencies...)
		}
		clone.Features[i] = f
	}
	return clone
}
