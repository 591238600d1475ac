package agent

import (
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cadence/internal/config"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
	"github.com/mrz1836/cadence/internal/testutil"
)

// mockExecutor records the command it ran and returns canned output.
type mockExecutor struct {
	stdout []byte
	stderr []byte
	err    error

	gotArgs   []string
	gotDir    string
	gotPrompt string
}

func (m *mockExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	m.gotArgs = cmd.Args
	m.gotDir = cmd.Dir
	if cmd.Stdin != nil {
		prompt, _ := io.ReadAll(cmd.Stdin)
		m.gotPrompt = string(prompt)
	}
	return m.stdout, m.stderr, m.err
}

// envelope wraps agent text output in the CLI's JSON envelope.
func envelope(t *testing.T, result string, isError bool) []byte {
	t.Helper()
	data, err := json.Marshal(CLIResponse{
		Type:      "result",
		IsError:   isError,
		Result:    result,
		SessionID: "agent-session-1",
		NumTurns:  2,
	})
	require.NoError(t, err)
	return data
}

func testAgentConfig() *config.AgentConfig {
	return &config.AgentConfig{
		Command:          "claude",
		ImplementTimeout: time.Minute,
		VerifyTimeout:    time.Minute,
	}
}

func testFeature() *domain.Feature {
	return &domain.Feature{
		ID:          "auth-login",
		Category:    "authentication",
		Priority:    domain.PriorityHigh,
		Description: "users can log in",
		Steps:       []string{"open /login", "submit credentials"},
	}
}

func TestCLIAgent_Implement(t *testing.T) {
	mockExec := &mockExecutor{
		stdout: envelope(t, "I made the changes.\n"+
			`{"success": true, "summary": "added login form", "details": "new handler"}`, false),
	}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	pctx := &domain.ProjectContext{
		ProjectPath:    "/project",
		RecentProgress: "session history here",
		RecentCommits:  []string{"abc123 fix tests"},
	}

	result, err := a.Implement(context.Background(), testFeature(), pctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "added login form", result.ChangesSummary)
	assert.Equal(t, "new handler", result.Details)

	// The CLI is invoked in non-interactive JSON mode.
	assert.Contains(t, mockExec.gotArgs, "-p")
	assert.Contains(t, mockExec.gotArgs, "--output-format")
	assert.Contains(t, mockExec.gotArgs, "json")

	// The prompt carries the feature and the accumulated context via stdin.
	assert.Contains(t, mockExec.gotPrompt, "Feature: auth-login")
	assert.Contains(t, mockExec.gotPrompt, "Priority: high")
	assert.Contains(t, mockExec.gotPrompt, "1. open /login")
	assert.Contains(t, mockExec.gotPrompt, "session history here")
	assert.Contains(t, mockExec.gotPrompt, "abc123 fix tests")
	assert.Contains(t, mockExec.gotPrompt, "Do not modify feature_list.json")
}

func TestCLIAgent_Implement_FailureVerdict(t *testing.T) {
	mockExec := &mockExecutor{
		stdout: envelope(t, `{"success": false, "summary": "", "details": "tests would not pass"}`, false),
	}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	result, err := a.Implement(context.Background(), testFeature(), nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "tests would not pass", result.Details)
}

func TestCLIAgent_Implement_NoVerdict(t *testing.T) {
	mockExec := &mockExecutor{stdout: envelope(t, "narration only, no verdict", false)}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	_, err := a.Implement(context.Background(), testFeature(), nil)
	assert.ErrorIs(t, err, cadenceerrors.ErrImplementation)
}

func TestCLIAgent_Implement_EnvelopeError(t *testing.T) {
	mockExec := &mockExecutor{stdout: envelope(t, "credit exhausted", true)}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	_, err := a.Implement(context.Background(), testFeature(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cadenceerrors.ErrImplementation)
	assert.Contains(t, err.Error(), "credit exhausted")
}

func TestCLIAgent_Implement_ExecFailure(t *testing.T) {
	mockExec := &mockExecutor{err: testutil.ErrMockAgentFailed, stderr: []byte("command not found")}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	_, err := a.Implement(context.Background(), testFeature(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cadenceerrors.ErrAgentInvocation)
	assert.Contains(t, err.Error(), "command not found")
}

func TestCLIAgent_Implement_MissingWorkDir(t *testing.T) {
	a := New(testAgentConfig(), "/nonexistent/project/path", WithExecutor(&mockExecutor{}))

	_, err := a.Implement(context.Background(), testFeature(), nil)
	assert.ErrorIs(t, err, cadenceerrors.ErrImplementation)
}

func TestCLIAgent_Implement_ContextCanceled(t *testing.T) {
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(&mockExecutor{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Implement(ctx, testFeature(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCLIAgent_Verify(t *testing.T) {
	mockExec := &mockExecutor{
		stdout: envelope(t, "Ran both steps.\n"+`{"passed": true, "details": "all steps ok"}`, false),
	}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	result, err := a.Verify(context.Background(), testFeature())
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, "all steps ok", result.Details)

	assert.Contains(t, mockExec.gotPrompt, "Do not change any code")
	assert.Contains(t, mockExec.gotPrompt, "2. submit credentials")
}

func TestCLIAgent_Verify_FailureVerdict(t *testing.T) {
	mockExec := &mockExecutor{
		stdout: envelope(t, `{"passed": false, "details": "step 2 returned 500"}`, false),
	}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	result, err := a.Verify(context.Background(), testFeature())
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, "step 2 returned 500", result.Details)
}

func TestCLIAgent_Verify_NoVerdict(t *testing.T) {
	mockExec := &mockExecutor{stdout: envelope(t, "inconclusive", false)}
	a := New(testAgentConfig(), t.TempDir(), WithExecutor(mockExec))

	_, err := a.Verify(context.Background(), testFeature())
	assert.ErrorIs(t, err, cadenceerrors.ErrVerification)
}

func TestCLIAgent_BuildCommand_ModelAndExtraArgs(t *testing.T) {
	cfg := testAgentConfig()
	cfg.Model = "opus"
	cfg.ExtraArgs = []string{"--dangerously-skip-permissions"}

	mockExec := &mockExecutor{
		stdout: envelope(t, `{"passed": true}`, false),
	}
	dir := t.TempDir()
	a := New(cfg, dir, WithExecutor(mockExec))

	_, err := a.Verify(context.Background(), testFeature())
	require.NoError(t, err)

	assert.Contains(t, mockExec.gotArgs, "--model")
	assert.Contains(t, mockExec.gotArgs, "opus")
	assert.Contains(t, mockExec.gotArgs, "--dangerously-skip-permissions")
	assert.Equal(t, dir, mockExec.gotDir)
}

func TestImplementPrompt_NoSteps(t *testing.T) {
	f := &domain.Feature{ID: "x", Priority: domain.PriorityLow, Description: "desc"}

	p := implementPrompt(f, nil)
	assert.NotContains(t, p, "Verification steps")
	assert.Contains(t, p, `{"success": true|false`)
}

func TestVerifyPrompt_NoSteps(t *testing.T) {
	f := &domain.Feature{ID: "x", Priority: domain.PriorityLow, Description: "desc"}

	p := verifyPrompt(f)
	assert.Contains(t, p, "declares no explicit steps")
	assert.Contains(t, p, `{"passed": true|false`)
}
