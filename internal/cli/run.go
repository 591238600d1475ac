// Package cli provides the command-line interface for cadence.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cadence/internal/agent"
	"github.com/mrz1836/cadence/internal/backlog"
	"github.com/mrz1836/cadence/internal/checkpoint"
	"github.com/mrz1836/cadence/internal/clock"
	"github.com/mrz1836/cadence/internal/config"
	"github.com/mrz1836/cadence/internal/contracts"
	"github.com/mrz1836/cadence/internal/git"
	"github.com/mrz1836/cadence/internal/progress"
	"github.com/mrz1836/cadence/internal/scheduler"
	"github.com/mrz1836/cadence/internal/tui"
)

// noopCommitter satisfies contracts.Committer when git integration is
// disabled; completed features are recorded without a commit hash.
type noopCommitter struct{}

// Commit is a no-op returning an empty hash.
func (noopCommitter) Commit(context.Context, string) (string, error) {
	return "", nil
}

// runFlags holds flags specific to the run command.
type runFlags struct {
	mode         string
	maxSessions  int
	agentCommand string
	model        string
	noCommit     bool
	noCheckpoint bool
}

// runSummary is the machine-readable summary printed after a run.
type runSummary struct {
	Final             string   `json:"final_state"`
	SessionsRun       int      `json:"sessions_run"`
	CompletedFeatures []string `json:"completed_features"`
	BlockedCause      string   `json:"blocked_cause,omitempty"`
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run coding sessions against the project backlog",
		Long: `Run executes coding-agent sessions against the project's feature backlog.

Modes:
  manual          one session, then stop (default)
  single-feature  sessions until one feature completes, bounded by a retry limit
  autonomous      sessions until done, blocked, interrupted, or the session cap

The run stops cleanly on Ctrl+C: the in-flight session finishes and the stop
is honored at the next session boundary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessions(cmd.Context(), cmd, flags, rf)
		},
	}

	cmd.Flags().StringVarP(&rf.mode, "mode", "m", "", "run mode (single-feature|manual|autonomous)")
	cmd.Flags().IntVar(&rf.maxSessions, "max-sessions", 0, "session cap for autonomous mode")
	cmd.Flags().StringVar(&rf.agentCommand, "agent", "", "agent CLI command (e.g. claude)")
	cmd.Flags().StringVar(&rf.model, "model", "", "model passed to the agent CLI")
	cmd.Flags().BoolVar(&rf.noCommit, "no-commit", false, "skip git commits after completed features")
	cmd.Flags().BoolVar(&rf.noCheckpoint, "no-checkpoint", false, "skip automatic checkpoints")

	root.AddCommand(cmd)
}

// runSessions wires the store, collaborators, and scheduler, then executes
// the configured mode.
func runSessions(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, rf *runFlags) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	logger := GetLogger()

	projectPath, err := filepath.Abs(flags.Project)
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}

	cfg, err := loadRunConfig(ctx, projectPath, rf)
	if err != nil {
		return err
	}
	// Bool flags are applied after layered load; false cannot be expressed
	// as an override value.
	if rf.noCommit {
		cfg.Git.Enabled = false
	}
	if rf.noCheckpoint {
		cfg.Checkpoint.Auto = false
	}

	mode, err := scheduler.ParseMode(cfg.Scheduler.Mode)
	if err != nil {
		return err
	}

	store, err := backlog.NewFileStore(projectPath)
	if err != nil {
		return err
	}

	progressLog := progress.NewLog(projectPath, clock.RealClock{})
	cliAgent := agent.New(&cfg.Agent, projectPath, agent.WithLogger(logger))
	gitRunner := git.NewRunner(projectPath, git.WithCommitPrefix(cfg.Git.CommitPrefix))

	var committer contracts.Committer = gitRunner
	if !cfg.Git.Enabled {
		committer = noopCommitter{}
	}

	opts := []scheduler.Option{}
	if cfg.Git.Enabled {
		opts = append(opts, scheduler.WithCommitLog(gitRunner))
	}
	if cfg.Checkpoint.Auto {
		var mgrOpts []checkpoint.Option
		if cfg.Git.Enabled {
			mgrOpts = append(mgrOpts, checkpoint.WithHeadResolver(gitRunner))
		}
		mgr, mgrErr := checkpoint.NewManager(projectPath, mgrOpts...)
		if mgrErr != nil {
			return mgrErr
		}
		opts = append(opts, scheduler.WithCheckpoints(mgr))
	}

	sched := scheduler.New(
		projectPath,
		store,
		cliAgent,
		cliAgent,
		committer,
		progressLog,
		scheduler.Config{
			Mode:                     mode,
			MaxSessions:              cfg.Scheduler.MaxSessions,
			SingleFeatureMaxSessions: cfg.Scheduler.SingleFeatureMaxSessions,
			SessionDelay:             cfg.Scheduler.SessionDelay,
			AutoCheckpoint:           cfg.Checkpoint.Auto,
		},
		logger,
		opts...,
	)

	result, runErr := sched.Run(ctx)
	printRunResult(out, flags.Output, result)
	if scheduler.IsBlocked(runErr) && result != nil {
		// The blockage detail goes to stderr so scripts capturing stdout
		// still see a clean summary.
		if cause := result.BlockedCause(); cause != "" {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cause)
		}
	}
	return runErr
}

// loadRunConfig loads layered configuration with run-flag overrides applied.
func loadRunConfig(ctx context.Context, projectPath string, rf *runFlags) (*config.Config, error) {
	overrides := &config.Config{}
	overrides.Scheduler.Mode = rf.mode
	overrides.Scheduler.MaxSessions = rf.maxSessions
	overrides.Agent.Command = rf.agentCommand
	overrides.Agent.Model = rf.model
	return config.LoadWithOverrides(ctx, projectPath, overrides)
}

// printRunResult renders the run summary in the selected output format.
func printRunResult(out tui.Output, format string, result *scheduler.Result) {
	if result == nil {
		return
	}

	if format == OutputJSON {
		_ = out.JSON(runSummary{
			Final:             string(result.Final),
			SessionsRun:       result.SessionsRun,
			CompletedFeatures: result.CompletedFeatures,
			BlockedCause:      result.BlockedCause(),
		})
		return
	}

	switch result.Final {
	case scheduler.StateDone:
		out.Success(fmt.Sprintf("all features pass (%d sessions this run)", result.SessionsRun))
	case scheduler.StateBlocked:
		out.Error(fmt.Errorf("run blocked: no feature can proceed"))
	default:
		out.Info(fmt.Sprintf("run stopped after %d sessions, %d features completed",
			result.SessionsRun, len(result.CompletedFeatures)))
	}

	for _, id := range result.CompletedFeatures {
		out.Success("completed " + id)
	}
}
