// Package contracts defines shared interfaces to avoid circular imports.
package contracts

import (
	"context"

	"github.com/mrz1836/cadence/internal/domain"
)

// Implementer is the external collaborator that implements one feature.
// Calls may take arbitrarily long and expose no partial progress; a crash
// or timeout leaves the feature unpassed and the session simply ends.
// Implemented by agent.Runner and used by the scheduler.
type Implementer interface {
	Implement(ctx context.Context, feature *domain.Feature, pctx *domain.ProjectContext) (*domain.ImplementResult, error)
}

// Verifier is the external collaborator that runs the end-to-end
// behavioral check against a feature's declared steps.
type Verifier interface {
	Verify(ctx context.Context, feature *domain.Feature) (*domain.VerifyResult, error)
}

// Committer is the external collaborator that records workspace changes.
// Implemented by git.Committer and used by the scheduler at RECORDING.
type Committer interface {
	Commit(ctx context.Context, changesSummary string) (string, error)
}
