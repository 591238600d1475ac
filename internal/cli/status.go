// Package cli provides the command-line interface for cadence.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cadence/internal/backlog"
	"github.com/mrz1836/cadence/internal/checkpoint"
	"github.com/mrz1836/cadence/internal/clock"
	"github.com/mrz1836/cadence/internal/graph"
	"github.com/mrz1836/cadence/internal/progress"
	"github.com/mrz1836/cadence/internal/tui"
)

// statusReport is the machine-readable project status.
type statusReport struct {
	Project                    string   `json:"project"`
	TotalFeatures              int      `json:"total_features"`
	CompletedFeatures          int      `json:"completed_features"`
	PendingFeatures            int      `json:"pending_features"`
	CompletionPercentage       float64  `json:"completion_percentage"`
	EstimatedSessionsRemaining *int     `json:"estimated_sessions_remaining"`
	SessionsRun                int      `json:"sessions_run"`
	ReadyFeatures              []string `json:"ready_features"`
	Warnings                   []string `json:"warnings,omitempty"`
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backlog progress and what is ready to run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showStatus(cmd.Context(), cmd, flags)
		},
	}
	root.AddCommand(cmd)
}

// showStatus prints counts, completion, the session-based estimate, and the
// current ready set.
func showStatus(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

	projectPath, err := filepath.Abs(flags.Project)
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}

	store, err := backlog.NewFileStore(projectPath)
	if err != nil {
		return err
	}

	b, err := store.Load(ctx)
	if err != nil {
		out.Error(err)
		return err
	}

	stats, err := progress.NewLog(projectPath, clock.RealClock{}).ReadStats(ctx)
	if err != nil {
		return err
	}

	metrics := checkpoint.Metrics(b, stats.Sessions, stats.Completed)
	ready, warnings := graph.ReadySet(b)

	report := statusReport{
		Project:                    b.Project,
		TotalFeatures:              metrics.TotalFeatures,
		CompletedFeatures:          metrics.CompletedFeatures,
		PendingFeatures:            metrics.PendingFeatures,
		CompletionPercentage:       metrics.CompletionPercentage,
		EstimatedSessionsRemaining: metrics.EstimatedSessionsRemaining,
		SessionsRun:                stats.Sessions,
	}
	for _, f := range ready {
		report.ReadyFeatures = append(report.ReadyFeatures, f.ID)
	}
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w.String())
	}

	if flags.Output == OutputJSON {
		return out.JSON(report)
	}

	out.Info(fmt.Sprintf("Project: %s", report.Project))
	out.Info(fmt.Sprintf("Features: %d/%d passing (%.2f%%)",
		report.CompletedFeatures, report.TotalFeatures, report.CompletionPercentage))
	out.Info(fmt.Sprintf("Sessions run: %d", report.SessionsRun))
	if report.EstimatedSessionsRemaining != nil {
		out.Info(fmt.Sprintf("Estimated sessions remaining: %d", *report.EstimatedSessionsRemaining))
	} else {
		out.Info("Estimated sessions remaining: unknown")
	}

	if len(ready) > 0 {
		out.Info("Ready:")
		for i := range ready {
			out.FeatureLine(&ready[i])
		}
	} else if report.PendingFeatures > 0 {
		out.Warning("no features are ready; run 'cadence graph' to inspect dependencies")
	} else {
		out.Success("all features pass")
	}

	for _, w := range report.Warnings {
		out.Warning(w)
	}

	return nil
}
