// Package errors provides centralized error handling for CADENCE.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrBacklogNotFound indicates that no backlog file exists for the project.
	ErrBacklogNotFound = errors.New("backlog not found")

	// ErrFeatureNotFound indicates that the requested feature ID is not
	// present in the backlog.
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrCheckpointNotFound indicates the requested checkpoint does not exist.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrCorruptState indicates a persisted backlog or checkpoint failed to
	// parse. No automatic repair is attempted.
	ErrCorruptState = errors.New("corrupt state")

	// ErrCycleDetected indicates one or more dependency cycles in the
	// backlog graph. The scheduler blocks rather than guessing a resolution.
	ErrCycleDetected = errors.New("dependency cycle detected")

	// ErrDataIntegrity indicates a feature dependency references a
	// nonexistent feature ID.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrImplementation indicates the external implement collaborator
	// reported failure for a feature.
	ErrImplementation = errors.New("implementation failed")

	// ErrVerification indicates the external verification collaborator
	// reported failure for a feature.
	ErrVerification = errors.New("verification failed")

	// ErrCommit indicates the external commit collaborator failed.
	ErrCommit = errors.New("commit failed")

	// ErrBlocked indicates the scheduler found no ready feature while
	// unpassed features remain.
	ErrBlocked = errors.New("scheduler blocked")

	// ErrInvalidTransition indicates an attempted scheduler state machine
	// transition that is not in the transitions table.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidMode indicates an unknown scheduler run mode.
	ErrInvalidMode = errors.New("invalid run mode")

	// ErrInvalidPriority indicates a feature priority outside the valid
	// enumeration.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrBacklogExists indicates an attempt to scaffold a project that
	// already has a backlog.
	ErrBacklogExists = errors.New("backlog already exists")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidArgument indicates a generally invalid argument value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLockTimeout indicates a file lock could not be acquired within the
	// timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidAgent indicates an invalid agent configuration value.
	ErrConfigInvalidAgent = errors.New("invalid agent configuration")

	// ErrConfigInvalidScheduler indicates an invalid scheduler configuration value.
	ErrConfigInvalidScheduler = errors.New("invalid scheduler configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrAgentInvocation indicates that the external agent CLI failed to
	// execute or returned a malformed result envelope.
	ErrAgentInvocation = errors.New("agent invocation failed")

	// ErrGitOperation indicates that a git command failed during execution.
	ErrGitOperation = errors.New("git operation failed")

	// ErrUserPromptNotFound indicates the user prompt file required for
	// scaffolding is missing.
	ErrUserPromptNotFound = errors.New("user prompt not found")
)
