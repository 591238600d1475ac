package config

import (
	"github.com/mrz1836/cadence/internal/errors"
)

// validModes are the accepted scheduler.mode values. Kept in sync with the
// scheduler package's Mode constants without importing it (config must not
// import domain-adjacent packages).
var validModes = map[string]bool{ //nolint:gochecknoglobals // Read-only lookup table
	"single-feature": true,
	"manual":         true,
	"autonomous":     true,
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Agent command must not be empty
//   - Agent timeouts must be positive
//   - Scheduler mode must be a known mode
//   - Scheduler session limits must be positive
//   - Scheduler session delay must not be negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateAgentConfig(&cfg.Agent); err != nil {
		return err
	}

	return validateSchedulerConfig(&cfg.Scheduler)
}

// validateAgentConfig checks agent-specific configuration values.
func validateAgentConfig(cfg *AgentConfig) error {
	if cfg.Command == "" {
		return errors.Wrap(errors.ErrConfigInvalidAgent,
			"agent.command must not be empty")
	}

	if cfg.ImplementTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidAgent,
			"agent.implement_timeout must be positive, got %s", cfg.ImplementTimeout)
	}

	if cfg.VerifyTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidAgent,
			"agent.verify_timeout must be positive, got %s", cfg.VerifyTimeout)
	}

	return nil
}

// validateSchedulerConfig checks scheduler-specific configuration values.
func validateSchedulerConfig(cfg *SchedulerConfig) error {
	if !validModes[cfg.Mode] {
		return errors.Wrapf(errors.ErrConfigInvalidScheduler,
			"scheduler.mode must be one of [single-feature manual autonomous], got %q", cfg.Mode)
	}

	if cfg.MaxSessions < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidScheduler,
			"scheduler.max_sessions must be at least 1, got %d", cfg.MaxSessions)
	}

	if cfg.SingleFeatureMaxSessions < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidScheduler,
			"scheduler.single_feature_max_sessions must be at least 1, got %d", cfg.SingleFeatureMaxSessions)
	}

	if cfg.SessionDelay < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidScheduler,
			"scheduler.session_delay must not be negative, got %s", cfg.SessionDelay)
	}

	return nil
}
