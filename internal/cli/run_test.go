package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cadence/internal/domain"
	"github.com/mrz1836/cadence/internal/scheduler"
)

// executeCommandStreams runs the CLI with stdout and stderr captured
// separately, against isolated CADENCE_HOME and HOME directories.
func executeCommandStreams(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("CADENCE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})

	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}

func TestRunCommand_BlockedDetailGoesToStderr(t *testing.T) {
	dir := t.TempDir()
	seedBacklog(t, dir,
		domain.Feature{ID: "a", Priority: domain.PriorityHigh, Description: "a", Dependencies: []string{"b"}},
		domain.Feature{ID: "b", Priority: domain.PriorityHigh, Description: "b", Dependencies: []string{"a"}},
	)

	stdout, stderr, err := executeCommandStreams(t,
		"run", "-m", "manual", "--no-commit", "--no-checkpoint", "-p", dir)

	require.Error(t, err)
	assert.True(t, scheduler.IsBlocked(err))
	assert.Equal(t, ExitError, ExitCodeForError(err))

	// The cycle detail lands on stderr; stdout keeps only the summary line.
	assert.Contains(t, stderr, "cycle: a -> b -> a")
	assert.Contains(t, stdout, "run blocked")
	assert.NotContains(t, stdout, "a -> b -> a")
}

func TestRunCommand_UnresolvedDependencyDetailGoesToStderr(t *testing.T) {
	dir := t.TempDir()
	seedBacklog(t, dir,
		domain.Feature{ID: "ui", Priority: domain.PriorityHigh, Description: "ui", Dependencies: []string{"ghost"}},
	)

	_, stderr, err := executeCommandStreams(t,
		"run", "-m", "manual", "--no-commit", "--no-checkpoint", "-p", dir)

	require.Error(t, err)
	assert.True(t, scheduler.IsBlocked(err))
	assert.Contains(t, stderr, "unresolved dependency: ui -> ghost")
}
