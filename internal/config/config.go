// Package config provides configuration management for CADENCE with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (CADENCE_* prefix)
//  3. Project config (.cadence/config.yaml)
//  4. Global config (~/.cadence/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mrz1836/cadence/internal/constants"
)

// Config is the root configuration structure for CADENCE.
// It contains all configuration sections for the application.
type Config struct {
	// Agent contains settings for the coding-agent CLI used to implement
	// and verify features.
	Agent AgentConfig `yaml:"agent" mapstructure:"agent"`

	// Scheduler contains settings for the session loop.
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`

	// Checkpoint contains settings for project state snapshots.
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`

	// Git contains settings for version-control integration.
	Git GitConfig `yaml:"git" mapstructure:"git"`
}

// AgentConfig contains settings for the coding-agent CLI.
// These settings control how CADENCE invokes the external agent that writes
// and verifies code.
type AgentConfig struct {
	// Command is the agent CLI binary to invoke (e.g., "claude", "gemini").
	// Default: "claude"
	Command string `yaml:"command" mapstructure:"command"`

	// Model specifies the model passed to the agent CLI (e.g., "sonnet", "opus").
	// Empty means the CLI's own default.
	Model string `yaml:"model,omitempty" mapstructure:"model"`

	// ExtraArgs are additional arguments appended to every agent invocation.
	ExtraArgs []string `yaml:"extra_args,omitempty" mapstructure:"extra_args"`

	// ImplementTimeout is the maximum duration for one implementation pass.
	// Default: 30 minutes
	ImplementTimeout time.Duration `yaml:"implement_timeout" mapstructure:"implement_timeout"`

	// VerifyTimeout is the maximum duration for one verification pass.
	// Default: 15 minutes
	VerifyTimeout time.Duration `yaml:"verify_timeout" mapstructure:"verify_timeout"`
}

// SchedulerConfig contains settings for the session loop.
type SchedulerConfig struct {
	// Mode is the default run mode when --mode is not passed.
	// Valid values: "single-feature", "manual", "autonomous"
	// Default: "manual"
	Mode string `yaml:"mode" mapstructure:"mode"`

	// MaxSessions caps the autonomous loop as a safety limit.
	// Default: 1000
	MaxSessions int `yaml:"max_sessions" mapstructure:"max_sessions"`

	// SingleFeatureMaxSessions caps retries in single-feature mode.
	// Default: 5
	SingleFeatureMaxSessions int `yaml:"single_feature_max_sessions" mapstructure:"single_feature_max_sessions"`

	// SessionDelay is the pause between autonomous sessions.
	// Default: 2s
	SessionDelay time.Duration `yaml:"session_delay" mapstructure:"session_delay"`
}

// CheckpointConfig contains settings for project state snapshots.
type CheckpointConfig struct {
	// Auto snapshots project state after every successfully recorded session.
	// Default: true
	Auto bool `yaml:"auto" mapstructure:"auto"`
}

// GitConfig contains settings for version-control integration.
type GitConfig struct {
	// Enabled controls whether sessions commit after passing verification
	// and whether recent commit subjects feed the agent's context.
	// Default: true
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// CommitPrefix is prepended to generated commit subjects.
	// Default: "" (no prefix)
	CommitPrefix string `yaml:"commit_prefix,omitempty" mapstructure:"commit_prefix"`
}

// GlobalConfigDir returns the global configuration directory (~/.cadence).
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.CadenceDir), nil
}

// ProjectConfigPath returns the project configuration file path relative to
// the current directory (.cadence/config.yaml).
func ProjectConfigPath() string {
	return filepath.Join(constants.CadenceDir, constants.ConfigFileName)
}
