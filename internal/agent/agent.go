// Package agent invokes an external coding-agent CLI to implement and
// verify features.
//
// Each call is one fresh, non-interactive agent session: the prompt carries
// all context (feature, steps, progress history), the CLI prints a JSON
// envelope, and the agent's own final-line verdict says whether the work
// succeeded. CADENCE never talks to a model API directly.
package agent

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/cadence/internal/config"
	"github.com/mrz1836/cadence/internal/constants"
	"github.com/mrz1836/cadence/internal/contracts"
	"github.com/mrz1836/cadence/internal/ctxutil"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

// CLIAgent implements the Implementer and Verifier contracts by shelling
// out to a coding-agent CLI such as claude.
type CLIAgent struct {
	cfg      *config.AgentConfig
	workDir  string
	executor CommandExecutor
	logger   zerolog.Logger
}

// Option is a functional option for configuring CLIAgent.
type Option func(*CLIAgent)

// WithLogger sets the logger for the CLIAgent.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *CLIAgent) {
		a.logger = logger
	}
}

// WithExecutor overrides the command executor, primarily for testing.
func WithExecutor(executor CommandExecutor) Option {
	return func(a *CLIAgent) {
		a.executor = executor
	}
}

// New creates a CLIAgent that runs the configured CLI in workDir.
func New(cfg *config.AgentConfig, workDir string, opts ...Option) *CLIAgent {
	a := &CLIAgent{
		cfg:      cfg,
		workDir:  workDir,
		executor: &DefaultExecutor{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Implement runs one implementation session for the feature and returns the
// agent's self-reported result.
func (a *CLIAgent) Implement(ctx context.Context, f *domain.Feature, pctx *domain.ProjectContext) (*domain.ImplementResult, error) {
	output, err := a.run(ctx, implementPrompt(f, pctx), a.implementTimeout(), cadenceerrors.ErrImplementation)
	if err != nil {
		return nil, err
	}

	var verdict implementVerdict
	if err := extractVerdict(output, `"success"`, &verdict, cadenceerrors.ErrImplementation); err != nil {
		return nil, err
	}

	return &domain.ImplementResult{
		Success:        verdict.Success,
		ChangesSummary: verdict.Summary,
		Details:        verdict.Details,
	}, nil
}

// Verify runs one verification session for the feature and returns the
// agent's self-reported verdict.
func (a *CLIAgent) Verify(ctx context.Context, f *domain.Feature) (*domain.VerifyResult, error) {
	output, err := a.run(ctx, verifyPrompt(f), a.verifyTimeout(), cadenceerrors.ErrVerification)
	if err != nil {
		return nil, err
	}

	var verdict verifyVerdict
	if err := extractVerdict(output, `"passed"`, &verdict, cadenceerrors.ErrVerification); err != nil {
		return nil, err
	}

	return &domain.VerifyResult{
		Passed:  verdict.Passed,
		Details: verdict.Details,
	}, nil
}

// run executes one agent CLI session with the given prompt and timeout,
// returning the agent's text output.
func (a *CLIAgent) run(ctx context.Context, prompt string, timeout time.Duration, sentinel error) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	// Pre-flight check: verify working directory exists before spawning.
	if a.workDir != "" {
		if _, err := os.Stat(a.workDir); os.IsNotExist(err) {
			return "", fmt.Errorf("working directory missing: %s: %w", a.workDir, sentinel)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := a.buildCommand(runCtx)
	// Prompt goes via stdin; it can be large.
	cmd.Stdin = strings.NewReader(prompt)

	start := time.Now()
	stdout, stderr, err := a.executor.Execute(runCtx, cmd)
	if err != nil {
		if runCtx.Err() != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: agent timed out after %s", sentinel, timeout)
		}
		if len(stderr) > 0 {
			return "", fmt.Errorf("%w: %s: %s", cadenceerrors.ErrAgentInvocation, err.Error(), strings.TrimSpace(string(stderr)))
		}
		return "", fmt.Errorf("%w: %s", cadenceerrors.ErrAgentInvocation, err.Error())
	}

	resp, err := parseCLIResponse(stdout, sentinel)
	if err != nil {
		return "", err
	}

	a.logger.Debug().
		Str("agent_session_id", resp.SessionID).
		Int("num_turns", resp.NumTurns).
		Dur("elapsed", time.Since(start)).
		Bool("is_error", resp.IsError).
		Msg("agent session finished")

	if resp.IsError {
		detail := resp.Result
		if detail == "" {
			detail = strings.TrimSpace(string(stderr))
		}
		return "", fmt.Errorf("%w: agent reported error: %s", sentinel, detail)
	}

	return resp.Result, nil
}

// buildCommand constructs the agent CLI command with appropriate flags.
func (a *CLIAgent) buildCommand(ctx context.Context) *exec.Cmd {
	args := []string{
		"-p", // Print mode (non-interactive)
		"--output-format", "json",
	}
	if a.cfg.Model != "" {
		args = append(args, "--model", a.cfg.Model)
	}
	args = append(args, a.cfg.ExtraArgs...)

	cmd := exec.CommandContext(ctx, a.cfg.Command, args...) //#nosec G204 -- command comes from validated configuration
	if a.workDir != "" {
		cmd.Dir = a.workDir
	}
	return cmd
}

// implementTimeout resolves the implementation timeout: config > default.
func (a *CLIAgent) implementTimeout() time.Duration {
	if a.cfg.ImplementTimeout > 0 {
		return a.cfg.ImplementTimeout
	}
	return constants.DefaultImplementTimeout
}

// verifyTimeout resolves the verification timeout: config > default.
func (a *CLIAgent) verifyTimeout() time.Duration {
	if a.cfg.VerifyTimeout > 0 {
		return a.cfg.VerifyTimeout
	}
	return constants.DefaultVerifyTimeout
}

// Compile-time checks that CLIAgent implements the collaborator contracts.
var (
	_ contracts.Implementer = (*CLIAgent)(nil)
	_ contracts.Verifier    = (*CLIAgent)(nil)
)
