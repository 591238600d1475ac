package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cadence/internal/backlog"
	"github.com/mrz1836/cadence/internal/domain"
)

// executeCommand runs the CLI with args against an isolated CADENCE_HOME and
// returns captured stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CADENCE_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// seedBacklog writes a backlog into the project directory.
func seedBacklog(t *testing.T, dir string, features ...domain.Feature) {
	t.Helper()
	store, err := backlog.NewFileStore(dir)
	require.NoError(t, err)

	b := domain.NewBacklog("demo")
	b.Features = features
	require.NoError(t, store.Save(context.Background(), b))
}

func TestRootCommand_Help(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "cadence")
	assert.Contains(t, out, "Available Commands")
}

func TestRootCommand_InvalidOutputFormat(t *testing.T) {
	_, err := executeCommand(t, "status", "-o", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCommand_VerboseQuietExclusive(t *testing.T) {
	_, err := executeCommand(t, "status", "-v", "-q")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestStatusCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	seedBacklog(t, dir,
		domain.Feature{ID: "a", Priority: domain.PriorityHigh, Description: "first", Passes: true},
		domain.Feature{ID: "b", Priority: domain.PriorityLow, Description: "second", Dependencies: []string{"a"}},
	)

	out, err := executeCommand(t, "status", "-o", "json", "-p", dir)
	require.NoError(t, err)

	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "demo", report.Project)
	assert.Equal(t, 2, report.TotalFeatures)
	assert.Equal(t, 1, report.CompletedFeatures)
	assert.InDelta(t, 50.0, report.CompletionPercentage, 0.001)
	assert.Equal(t, []string{"b"}, report.ReadyFeatures)
	assert.Nil(t, report.EstimatedSessionsRemaining, "no session history yet")
}

func TestStatusCommand_MissingBacklog(t *testing.T) {
	_, err := executeCommand(t, "status", "-p", t.TempDir())
	assert.Error(t, err)
}

func TestGraphCommand_Text(t *testing.T) {
	dir := t.TempDir()
	seedBacklog(t, dir,
		domain.Feature{ID: "base", Priority: domain.PriorityHigh, Description: "base"},
		domain.Feature{ID: "top", Priority: domain.PriorityLow, Description: "top", Dependencies: []string{"base"}},
	)

	out, err := executeCommand(t, "graph", "-p", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Dependency Graph")
	assert.Contains(t, out, "base (priority: high) [ready]")
	assert.Contains(t, out, "top (priority: low) [blocked]")
}

func TestGraphCommand_JSONReportsCycles(t *testing.T) {
	dir := t.TempDir()
	seedBacklog(t, dir,
		domain.Feature{ID: "a", Priority: domain.PriorityHigh, Description: "a", Dependencies: []string{"b"}},
		domain.Feature{ID: "b", Priority: domain.PriorityHigh, Description: "b", Dependencies: []string{"a"}},
	)

	out, err := executeCommand(t, "graph", "-o", "json", "-p", dir)
	require.NoError(t, err)

	var report graphReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.Ready)
	assert.Equal(t, []string{"a -> b -> a"}, report.Cycles)
}

func TestGraphCommand_DOT(t *testing.T) {
	dir := t.TempDir()
	seedBacklog(t, dir,
		domain.Feature{ID: "base", Priority: domain.PriorityHigh, Description: "base", Passes: true},
		domain.Feature{ID: "top", Priority: domain.PriorityLow, Description: "top", Dependencies: []string{"base"}},
	)

	out, err := executeCommand(t, "graph", "--dot", "-p", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph FeatureDependencies {")
	assert.Contains(t, out, `"base" -> "top";`)
	assert.Contains(t, out, "fillcolor=lightgray")
	assert.Contains(t, out, "fillcolor=lightblue")
}

func TestInitCommand_ScaffoldsProject(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, "init", "-p", dir, "-n", "myproject", "--prompt", "build a todo app")
	require.NoError(t, err)
	assert.Contains(t, out, "feature_list.json")

	// Starter files exist.
	assert.FileExists(t, filepath.Join(dir, ".cadence", "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "feature_list.json"))
	assert.FileExists(t, filepath.Join(dir, "user_prompt.txt"))
	assert.DirExists(t, filepath.Join(dir, ".git"))

	prompt, err := os.ReadFile(filepath.Join(dir, "user_prompt.txt"))
	require.NoError(t, err)
	assert.Equal(t, "build a todo app\n", string(prompt))

	// The starter backlog is empty and carries the project name.
	store, err := backlog.NewFileStore(dir)
	require.NoError(t, err)
	b, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "myproject", b.Project)
	assert.Empty(t, b.Features)
}

func TestInitCommand_Idempotent(t *testing.T) {
	dir := t.TempDir()
	seedBacklog(t, dir, domain.Feature{ID: "keep", Priority: domain.PriorityHigh, Description: "existing"})

	_, err := executeCommand(t, "init", "-p", dir)
	require.NoError(t, err)

	// An existing backlog is never overwritten.
	store, err := backlog.NewFileStore(dir)
	require.NoError(t, err)
	b, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Features, 1)
	assert.Equal(t, "keep", b.Features[0].ID)
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev (commit: none, built: unknown)", formatVersion(BuildInfo{}))
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2024-06-15)",
		formatVersion(BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2024-06-15"}))
}
