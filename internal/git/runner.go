// Package git provides the version-control integration for CADENCE.
//
// Sessions commit once per completed feature, so the commit history mirrors
// the backlog: one feature, one commit. The package shells out to the git
// CLI rather than linking a git library, keeping behavior identical to what
// a developer runs by hand.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

// commitSubjectLimit truncates generated commit subjects to a conventional
// length; the full summary goes in the body.
const commitSubjectLimit = 72

// Runner executes git operations in one working directory.
// It implements contracts.Committer, checkpoint.HeadResolver, and
// scheduler.CommitLogReader.
type Runner struct {
	workDir      string
	commitPrefix string
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommitPrefix prepends a prefix to every generated commit subject.
func WithCommitPrefix(prefix string) Option {
	return func(r *Runner) {
		r.commitPrefix = prefix
	}
}

// NewRunner creates a Runner rooted at the given working directory.
func NewRunner(workDir string, opts ...Option) *Runner {
	r := &Runner{workDir: workDir}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunCommand executes a git command in the runner's directory and returns
// its trimmed stdout. All errors are wrapped with ErrGitOperation and
// include stderr for debugging.
func (r *Runner) RunCommand(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally, not user input
	cmd.Dir = r.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), cadenceerrors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], cadenceerrors.ErrGitOperation)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsRepo reports whether the working directory is inside a git repository.
func (r *Runner) IsRepo(ctx context.Context) bool {
	_, err := r.RunCommand(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// Init initializes a new git repository in the working directory.
func (r *Runner) Init(ctx context.Context) error {
	_, err := r.RunCommand(ctx, "init")
	return err
}

// Commit stages all changes and creates a commit whose subject is derived
// from changesSummary. It returns the new commit hash.
//
// When nothing is staged the commit is skipped and the current HEAD hash is
// returned; an agent session may legitimately change no files.
func (r *Runner) Commit(ctx context.Context, changesSummary string) (string, error) {
	if _, err := r.RunCommand(ctx, "add", "-A"); err != nil {
		return "", err
	}

	// Empty diff: nothing to commit.
	if _, err := r.RunCommand(ctx, "diff", "--cached", "--quiet"); err == nil {
		return r.Head(ctx)
	}

	if _, err := r.RunCommand(ctx, "commit", "-m", r.commitMessage(changesSummary)); err != nil {
		return "", err
	}

	return r.Head(ctx)
}

// Head returns the current commit hash, or an error when the repository has
// no commits yet.
func (r *Runner) Head(ctx context.Context) (string, error) {
	return r.RunCommand(ctx, "rev-parse", "HEAD")
}

// RecentCommits returns up to n most recent commit subjects, newest first.
// A repository with no commits yields an empty slice, not an error.
func (r *Runner) RecentCommits(ctx context.Context, n int) ([]string, error) {
	out, err := r.RunCommand(ctx, "log", fmt.Sprintf("-%d", n), "--pretty=format:%h %s")
	if err != nil {
		// No commits yet is not an error for context-building purposes.
		if strings.Contains(err.Error(), "does not have any commits") {
			return []string{}, nil
		}
		return nil, err
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}

// commitMessage builds the commit message: a truncated subject line plus the
// full summary as the body when it was truncated.
func (r *Runner) commitMessage(changesSummary string) string {
	summary := strings.TrimSpace(changesSummary)
	if summary == "" {
		summary = "Session changes"
	}

	subject := summary
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}
	if r.commitPrefix != "" {
		subject = r.commitPrefix + subject
	}
	truncated := false
	if len(subject) > commitSubjectLimit {
		subject = subject[:commitSubjectLimit-3] + "..."
		truncated = true
	}

	if truncated || strings.Contains(summary, "\n") {
		return subject + "\n\n" + summary
	}
	return subject
}
