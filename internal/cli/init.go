// Package cli provides the command-line interface for cadence.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/cadence/internal/backlog"
	"github.com/mrz1836/cadence/internal/config"
	"github.com/mrz1836/cadence/internal/constants"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
	"github.com/mrz1836/cadence/internal/git"
	"github.com/mrz1836/cadence/internal/tui"
)

// initFlags holds flags specific to the init command.
type initFlags struct {
	name   string
	prompt string
}

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command, flags *GlobalFlags) {
	inf := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a project for cadence sessions",
		Long: `Init prepares a project directory for coding sessions:

  • initializes a git repository when none exists
  • writes a starter .cadence/config.yaml
  • writes an empty feature_list.json backlog
  • optionally records the project requirements in user_prompt.txt

Populate the backlog by editing feature_list.json, or hand user_prompt.txt
to your agent to generate the feature list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initProject(cmd.Context(), cmd, flags, inf)
		},
	}

	cmd.Flags().StringVarP(&inf.name, "name", "n", "", "project name (default: directory name)")
	cmd.Flags().StringVar(&inf.prompt, "prompt", "", "project requirements to record in user_prompt.txt")

	root.AddCommand(cmd)
}

// initProject scaffolds the project directory.
func initProject(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, inf *initFlags) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

	projectPath, err := filepath.Abs(flags.Project)
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}
	if err := os.MkdirAll(projectPath, 0o750); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	name := inf.name
	if name == "" {
		name = filepath.Base(projectPath)
	}

	// Version control first; sessions commit per completed feature.
	runner := git.NewRunner(projectPath)
	if !runner.IsRepo(ctx) {
		if err := runner.Init(ctx); err != nil {
			return err
		}
		out.Success("initialized git repository")
	}

	if created, err := writeStarterConfig(projectPath); err != nil {
		return err
	} else if created {
		out.Success("wrote " + filepath.Join(constants.CadenceDir, constants.ConfigFileName))
	}

	if created, err := writeStarterBacklog(ctx, projectPath, name); err != nil {
		return err
	} else if created {
		out.Success("wrote " + constants.BacklogFileName)
	} else {
		out.Info(constants.BacklogFileName + " already exists, leaving it untouched")
	}

	if inf.prompt != "" {
		promptPath := filepath.Join(projectPath, constants.UserPromptFileName)
		if err := os.WriteFile(promptPath, []byte(inf.prompt+"\n"), 0o600); err != nil {
			return fmt.Errorf("failed to write user prompt: %w", err)
		}
		out.Success("wrote " + constants.UserPromptFileName)
	}

	out.Info("next: add features to " + constants.BacklogFileName + ", then 'cadence run'")
	return nil
}

// writeStarterConfig writes the default config under .cadence/ unless one
// already exists. Returns true when a new file was written.
func writeStarterConfig(projectPath string) (bool, error) {
	cadenceDir := filepath.Join(projectPath, constants.CadenceDir)
	if err := os.MkdirAll(cadenceDir, 0o750); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", constants.CadenceDir, err)
	}

	configPath := filepath.Join(cadenceDir, constants.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("failed to marshal starter config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write starter config: %w", err)
	}
	return true, nil
}

// writeStarterBacklog writes an empty backlog unless one already exists.
// Returns true when a new file was written.
func writeStarterBacklog(ctx context.Context, projectPath, name string) (bool, error) {
	store, err := backlog.NewFileStore(projectPath)
	if err != nil {
		return false, err
	}

	if _, err := store.Load(ctx); err == nil {
		return false, nil
	} else if !stderrors.Is(err, cadenceerrors.ErrBacklogNotFound) {
		return false, err
	}

	if err := store.Save(ctx, domain.NewBacklog(name)); err != nil {
		return false, err
	}
	return true, nil
}
