// Package domain provides shared domain types for the CADENCE scheduling system.
package domain

import "time"

// SessionOutcome classifies how a scheduler session ended.
type SessionOutcome string

// Session outcome values.
const (
	// OutcomeCompleted means the selected feature was implemented,
	// verified, and recorded as passing.
	OutcomeCompleted SessionOutcome = "completed"

	// OutcomeImplementFailed means the implement collaborator reported failure.
	OutcomeImplementFailed SessionOutcome = "implement_failed"

	// OutcomeVerifyFailed means verification reported failure after a
	// successful implementation.
	OutcomeVerifyFailed SessionOutcome = "verify_failed"

	// OutcomeDone means no unpassed features remain; nothing was selected.
	OutcomeDone SessionOutcome = "done"

	// OutcomeBlocked means unpassed features remain but none are ready
	// (cycles or unresolvable dependencies).
	OutcomeBlocked SessionOutcome = "blocked"
)

// Session records one bounded unit of scheduler activity: one pass from
// SELECTING through RECORDING (or an early DONE/BLOCKED determination).
// Sessions are strictly sequential — no concurrent sessions run against
// the same backlog.
type Session struct {
	// ID is the timestamp-derived session identifier (sess-YYYYMMDD-HHMMSS).
	ID string `json:"id"`

	// FeatureID is the feature worked on, empty for DONE/BLOCKED sessions.
	FeatureID string `json:"feature_id,omitempty"`

	// Outcome classifies how the session ended.
	Outcome SessionOutcome `json:"outcome"`

	// CommitHash is the commit recorded on success, if any.
	CommitHash string `json:"commit_hash,omitempty"`

	// Notes carries free-text detail (failure causes, change summaries).
	Notes string `json:"notes,omitempty"`

	// StartedAt is when the session began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the session ended.
	CompletedAt time.Time `json:"completed_at"`
}

// ImplementResult captures the outcome of an implement collaborator call.
type ImplementResult struct {
	// Success indicates whether the implementation completed without errors.
	Success bool `json:"success"`

	// ChangesSummary describes the changes made, used for the commit message.
	ChangesSummary string `json:"changes_summary,omitempty"`

	// Details carries failure causes or agent output for the progress log.
	Details string `json:"details,omitempty"`
}

// VerifyResult captures the outcome of a verification collaborator call.
type VerifyResult struct {
	// Passed indicates whether the feature's declared steps all passed.
	Passed bool `json:"passed"`

	// Details carries the verification report or failure causes.
	Details string `json:"details,omitempty"`
}

// ProjectContext carries the accumulated context handed to the implement
// collaborator: recent progress entries and recent commit summaries.
// No hidden process-wide state — every scheduler, store, and analyzer call
// receives what it needs explicitly.
type ProjectContext struct {
	// ProjectPath is the absolute path of the project workspace.
	ProjectPath string `json:"project_path"`

	// RecentProgress holds the tail of the progress log.
	RecentProgress string `json:"recent_progress,omitempty"`

	// RecentCommits holds recent commit subject lines.
	RecentCommits []string `json:"recent_commits,omitempty"`
}
