package config

import (
	"github.com/mrz1836/cadence/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			// Command: "claude" is the recommended coding-agent CLI.
			Command: "claude",

			// Model: empty defers to the agent CLI's own default.
			Model: "",

			// ImplementTimeout: 30 minutes allows for complex features.
			ImplementTimeout: constants.DefaultImplementTimeout,

			// VerifyTimeout: verification runs declared steps only, so it
			// gets a shorter budget than implementation.
			VerifyTimeout: constants.DefaultVerifyTimeout,
		},
		Scheduler: SchedulerConfig{
			// Mode: manual keeps the human in the loop by default.
			Mode: "manual",

			// MaxSessions: hard safety limit for autonomous runs.
			MaxSessions: constants.DefaultMaxSessions,

			// SingleFeatureMaxSessions: retry budget for one feature.
			SingleFeatureMaxSessions: constants.DefaultSingleFeatureMaxSessions,

			// SessionDelay: brief pause between autonomous sessions.
			SessionDelay: constants.DefaultSessionDelay,
		},
		Checkpoint: CheckpointConfig{
			// Auto: snapshot after every recorded session so any session
			// boundary can be rolled back to.
			Auto: true,
		},
		Git: GitConfig{
			// Enabled: commit per completed feature by default.
			Enabled: true,
		},
	}
}
