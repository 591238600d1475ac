// Package cli provides the command-line interface for cadence.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/cadence/internal/backlog"
	"github.com/mrz1836/cadence/internal/graph"
	"github.com/mrz1836/cadence/internal/tui"
)

// graphReport is the machine-readable dependency graph summary.
type graphReport struct {
	Ready    []string `json:"ready"`
	Cycles   []string `json:"cycles,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// AddGraphCommand adds the graph command to the root command.
func AddGraphCommand(root *cobra.Command, flags *GlobalFlags) {
	var dot bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize the feature dependency graph",
		Long: `Graph renders the backlog's dependency structure: root features first,
then dependent features with per-dependency satisfied/pending markers,
followed by any dependency cycles and integrity warnings.

With --dot the graph is emitted in Graphviz DOT format instead, suitable
for piping to dot(1).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showGraph(cmd.Context(), cmd, flags, dot)
		},
	}
	cmd.Flags().BoolVar(&dot, "dot", false, "emit Graphviz DOT instead of the text rendering")
	root.AddCommand(cmd)
}

// showGraph prints the dependency graph visualization.
func showGraph(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, dot bool) error {
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

	if dot {
		_, err = fmt.Fprint(cmd.OutOrStdout(), graph.ExportDOT(b))
		return err
	}

	if flags.Output == OutputJSON {
		report := graphReport{}
		ready, warnings := graph.ReadySet(b)
		for _, f := range ready {
			report.Ready = append(report.Ready, f.ID)
		}
		for _, c := range graph.DetectCycles(b) {
			report.Cycles = append(report.Cycles, c.String())
		}
		for _, w := range warnings {
			report.Warnings = append(report.Warnings, w.String())
		}
		return out.JSON(report)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), graph.Visualize(b))
	return err
}
