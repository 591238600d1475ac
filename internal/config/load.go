package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/cadence/internal/constants"
	"github.com/mrz1836/cadence/internal/errors"
)

// newViperInstance creates a new Viper instance with standard CADENCE
// configuration: environment variable prefix (CADENCE_), key replacer, and
// defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CADENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (CADENCE_* prefix)
//  2. Project config (<projectPath>/.cadence/config.yaml)
//  3. Global config (~/.cadence/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not errors; they are expected in many scenarios.
func Load(ctx context.Context, projectPath string) (*Config, error) {
	v := newViperInstance()

	// Global config first (lower precedence)
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	// Project config merges over global
	if err := loadProjectConfig(v, projectPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("agent.command", cfg.Agent.Command).
		Str("scheduler.mode", cfg.Scheduler.Mode).
		Dur("agent.implement_timeout", cfg.Agent.ImplementTimeout).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig attempts to load the global config file (~/.cadence/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalDir, err := GlobalConfigDir()
	if err != nil {
		return nil //nolint:nilerr // no home dir means no global config, not an error
	}
	globalConfigPath := filepath.Join(globalDir, constants.ConfigFileName)
	if !fileExists(globalConfigPath) {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig attempts to load the project config file
// (<projectPath>/.cadence/config.yaml). Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper, projectPath string) error {
	projectConfigPath := filepath.Join(projectPath, constants.CadenceDir, constants.ConfigFileName)
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied, allowing partial overrides.
//
// Boolean fields (checkpoint.auto, git.enabled) cannot be overridden to
// false through this function; CLI implementations handle boolean flags
// separately via Changed() checks.
func LoadWithOverrides(ctx context.Context, projectPath string, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx, projectPath)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	// Agent defaults
	v.SetDefault("agent.command", "claude")
	v.SetDefault("agent.model", "")
	v.SetDefault("agent.extra_args", []string{})
	v.SetDefault("agent.implement_timeout", "30m")
	v.SetDefault("agent.verify_timeout", "15m")

	// Scheduler defaults
	v.SetDefault("scheduler.mode", "manual")
	v.SetDefault("scheduler.max_sessions", constants.DefaultMaxSessions)
	v.SetDefault("scheduler.single_feature_max_sessions", constants.DefaultSingleFeatureMaxSessions)
	v.SetDefault("scheduler.session_delay", "2s")

	// Checkpoint defaults
	v.SetDefault("checkpoint.auto", true)

	// Git defaults
	v.SetDefault("git.enabled", true)
	v.SetDefault("git.commit_prefix", "")
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Agent.Command != "" {
		cfg.Agent.Command = overrides.Agent.Command
	}
	if overrides.Agent.Model != "" {
		cfg.Agent.Model = overrides.Agent.Model
	}
	if len(overrides.Agent.ExtraArgs) > 0 {
		cfg.Agent.ExtraArgs = overrides.Agent.ExtraArgs
	}
	if overrides.Agent.ImplementTimeout != 0 {
		cfg.Agent.ImplementTimeout = overrides.Agent.ImplementTimeout
	}
	if overrides.Agent.VerifyTimeout != 0 {
		cfg.Agent.VerifyTimeout = overrides.Agent.VerifyTimeout
	}

	if overrides.Scheduler.Mode != "" {
		cfg.Scheduler.Mode = overrides.Scheduler.Mode
	}
	if overrides.Scheduler.MaxSessions != 0 {
		cfg.Scheduler.MaxSessions = overrides.Scheduler.MaxSessions
	}
	if overrides.Scheduler.SingleFeatureMaxSessions != 0 {
		cfg.Scheduler.SingleFeatureMaxSessions = overrides.Scheduler.SingleFeatureMaxSessions
	}
	if overrides.Scheduler.SessionDelay != 0 {
		cfg.Scheduler.SessionDelay = overrides.Scheduler.SessionDelay
	}

	if overrides.Git.CommitPrefix != "" {
		cfg.Git.CommitPrefix = overrides.Git.CommitPrefix
	}
	// Checkpoint.Auto and Git.Enabled are bools - we can't distinguish false
	// from unset, so the CLI overrides them via Changed() checks.
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
