// Package domain provides shared domain types for the CADENCE scheduling system.
package domain

import "time"

// Checkpoint is an immutable snapshot of project state at a point in time.
// Checkpoints are append-only; restoring one does not delete later
// checkpoints but does overwrite the live backlog and progress log.
//
// Example JSON representation:
//
//	{
//	    "checkpoint_id": "cp-a1b2c3d4-20260825-101500",
//	    "session_id": "sess-20260825-101455",
//	    "description": "after feat-auth-login",
//	    "timestamp": "2026-08-25T10:15:00Z",
//	    "git_hash": "0f3c9aa...",
//	    "project_path": "/home/dev/my-app"
//	}
type Checkpoint struct {
	// CheckpointID is the unique, time-derived identifier.
	CheckpointID string `json:"checkpoint_id"`

	// SessionID identifies the session that created the checkpoint.
	SessionID string `json:"session_id"`

	// Description is a free-text label for the checkpoint.
	Description string `json:"description,omitempty"`

	// Timestamp is when the checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// GitHash records the workspace commit at snapshot time, if available.
	// The workspace file state itself is treated as an opaque reference.
	GitHash string `json:"git_hash,omitempty"`

	// ProjectPath is the absolute path of the project the snapshot belongs to.
	ProjectPath string `json:"project_path,omitempty"`
}

// ProgressMetrics summarizes backlog completion for one project.
type ProgressMetrics struct {
	// TotalFeatures is the number of features in the backlog.
	TotalFeatures int `json:"total_features"`

	// CompletedFeatures is the number of passing features.
	CompletedFeatures int `json:"completed_features"`

	// PendingFeatures is the number of features not yet passing.
	PendingFeatures int `json:"pending_features"`

	// CompletionPercentage is CompletedFeatures/TotalFeatures*100,
	// rounded to two decimals. Zero for an empty backlog.
	CompletionPercentage float64 `json:"completion_percentage"`

	// EstimatedSessionsRemaining estimates sessions left based on observed
	// per-session throughput. Nil when no sessions have completed yet —
	// the estimate is unknown, not zero.
	EstimatedSessionsRemaining *int `json:"estimated_sessions_remaining"`
}
