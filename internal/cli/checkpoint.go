// Package cli provides the command-line interface for cadence.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cadence/internal/checkpoint"
	"github.com/mrz1836/cadence/internal/clock"
	"github.com/mrz1836/cadence/internal/git"
	"github.com/mrz1836/cadence/internal/tui"
)

// AddCheckpointCommand adds the checkpoint command group to the root command.
func AddCheckpointCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Save, list, and restore project state snapshots",
		Long: `Checkpoint manages point-in-time snapshots of the backlog and progress log.

Snapshots are append-only: restoring an earlier checkpoint overwrites the
live files but never deletes later checkpoints, so a restore can itself be
undone by restoring a newer checkpoint.`,
	}

	cmd.AddCommand(newCheckpointSaveCmd(flags))
	cmd.AddCommand(newCheckpointListCmd(flags))
	cmd.AddCommand(newCheckpointRestoreCmd(flags))

	root.AddCommand(cmd)
}

// newCheckpointManager builds a Manager for the project, recording the git
// HEAD when the project is a repository.
func newCheckpointManager(ctx context.Context, projectDir string) (*checkpoint.Manager, error) {
	projectPath, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}

	var opts []checkpoint.Option
	if runner := git.NewRunner(projectPath); runner.IsRepo(ctx) {
		opts = append(opts, checkpoint.WithHeadResolver(runner))
	}
	return checkpoint.NewManager(projectPath, opts...)
}

// newCheckpointSaveCmd creates the checkpoint save subcommand.
func newCheckpointSaveCmd(flags *GlobalFlags) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Snapshot the current backlog and progress log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			mgr, err := newCheckpointManager(cmd.Context(), flags.Project)
			if err != nil {
				return err
			}

			sessionID := "manual-" + clock.RealClock{}.Now().UTC().Format("20060102-150405")
			id, err := mgr.Save(cmd.Context(), sessionID, description)
			if err != nil {
				out.Error(err)
				return err
			}

			if flags.Output == OutputJSON {
				return out.JSON(map[string]string{"checkpoint_id": id})
			}
			out.Success("saved checkpoint " + id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "checkpoint description")
	return cmd
}

// newCheckpointListCmd creates the checkpoint list subcommand.
func newCheckpointListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			mgr, err := newCheckpointManager(cmd.Context(), flags.Project)
			if err != nil {
				return err
			}

			checkpoints, err := mgr.List(cmd.Context())
			if err != nil {
				out.Error(err)
				return err
			}

			if flags.Output == OutputJSON {
				return out.JSON(checkpoints)
			}

			if len(checkpoints) == 0 {
				out.Info("no checkpoints")
				return nil
			}
			lines := make([]string, 0, len(checkpoints))
			for _, cp := range checkpoints {
				line := fmt.Sprintf("%s  %s  session=%s", cp.CheckpointID, cp.Timestamp.Format("2006-01-02 15:04:05"), cp.SessionID)
				if cp.Description != "" {
					line += "  " + cp.Description
				}
				lines = append(lines, line)
			}
			out.List("Checkpoints:", lines)
			return nil
		},
	}
}

// newCheckpointRestoreCmd creates the checkpoint restore subcommand.
func newCheckpointRestoreCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Overwrite the live backlog and progress log from a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.CheckNoColor()
			out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

			mgr, err := newCheckpointManager(cmd.Context(), flags.Project)
			if err != nil {
				return err
			}

			meta, err := mgr.Restore(cmd.Context(), args[0])
			if err != nil {
				out.Error(err)
				return err
			}

			if flags.Output == OutputJSON {
				return out.JSON(meta)
			}
			out.Success(fmt.Sprintf("restored checkpoint %s (saved %s)",
				meta.CheckpointID, meta.Timestamp.Format("2006-01-02 15:04:05")))
			if meta.GitHash != "" {
				out.Info("workspace commit at snapshot time: " + meta.GitHash)
			}
			return nil
		},
	}
}
