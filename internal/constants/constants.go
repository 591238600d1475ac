// Package constants provides centralized constant values used throughout CADENCE.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by CADENCE for project state persistence.
const (
	// BacklogFileName is the JSON file that stores the feature backlog
	// at the root of a project directory.
	BacklogFileName = "feature_list.json"

	// ProgressLogFileName is the append-only, human-readable session log
	// at the root of a project directory.
	ProgressLogFileName = "claude-progress.txt"

	// CheckpointMetadataFileName is the metadata file inside each
	// checkpoint directory.
	CheckpointMetadataFileName = "metadata.json"

	// CLILogFileName is the rotating structured log file under the logs directory.
	CLILogFileName = "cadence.log"

	// UserPromptFileName holds the user's project requirements, consumed
	// once by project scaffolding.
	UserPromptFileName = "user_prompt.txt"

	// ConfigFileName is the YAML configuration file under CadenceDir,
	// at both the project and global (~/.cadence) levels.
	ConfigFileName = "config.yaml"
)

// Directory names used by CADENCE for organizing per-project data.
const (
	// CadenceDir is the hidden directory inside a project where CADENCE
	// stores checkpoints, logs, and project-level configuration.
	CadenceDir = ".cadence"

	// CheckpointsDir is the directory name under CadenceDir where
	// checkpoint snapshots are stored.
	CheckpointsDir = "checkpoints"

	// LogsDir is the directory name under CadenceDir where log files are stored.
	LogsDir = "logs"
)

// Timeout configurations for various operations.
const (
	// DefaultImplementTimeout is the default maximum duration for a single
	// feature implementation call to the external agent.
	DefaultImplementTimeout = 30 * time.Minute

	// DefaultVerifyTimeout is the default maximum duration for a single
	// verification run against a feature's declared steps.
	DefaultVerifyTimeout = 15 * time.Minute

	// DefaultSessionDelay is the default pause between autonomous sessions.
	DefaultSessionDelay = 2 * time.Second
)

// Scheduler limits.
const (
	// DefaultMaxSessions caps the autonomous loop as a safety limit.
	DefaultMaxSessions = 1000

	// DefaultSingleFeatureMaxSessions caps single-feature mode retries.
	DefaultSingleFeatureMaxSessions = 5
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days of retained rotated files.
	LogMaxAgeDays = 28

	// LogCompress controls gzip compression of rotated files.
	LogCompress = true
)

// Schema version constants for data migration support.
const (
	// BacklogSchemaVersion is the current version of the backlog JSON schema.
	BacklogSchemaVersion = "1.0"
)
