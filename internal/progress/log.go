// Package progress maintains the append-only, human-readable session log
// for a project. One entry is written per session, preserving an audit
// trail of every outcome, including errors that halted a session.
package progress

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrz1836/cadence/internal/clock"
	"github.com/mrz1836/cadence/internal/constants"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

const filePerm = 0o600

// Entry is one progress log record.
type Entry struct {
	// Timestamp is when the entry was written.
	Timestamp time.Time

	// Role identifies the agent that produced the entry (e.g., "coding-agent").
	Role string

	// SessionID links the entry to its session.
	SessionID string

	// FeatureID is the feature worked on, if any.
	FeatureID string

	// Outcome classifies the session result.
	Outcome domain.SessionOutcome

	// Notes carries free-text detail.
	Notes string
}

// Log appends session entries to the project progress file.
type Log struct {
	path  string
	clock clock.Clock
}

// NewLog creates a Log for the given project directory.
func NewLog(projectPath string, clk clock.Clock) *Log {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Log{
		path:  filepath.Join(projectPath, constants.ProgressLogFileName),
		clock: clk,
	}
}

// Path returns the absolute path of the progress log file.
func (l *Log) Path() string {
	return l.path
}

// Append writes one entry to the end of the log.
// The log is append-only: entries are never rewritten or removed.
func (l *Log) Append(ctx context.Context, e Entry) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if e.Role == "" {
		return fmt.Errorf("failed to append progress entry: role %w", cadenceerrors.ErrEmptyValue)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.clock.Now().UTC()
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to open progress log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(formatEntry(e)); err != nil {
		return fmt.Errorf("failed to append progress entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync progress log: %w", err)
	}
	return nil
}

// Tail returns up to maxLines of the most recent log content, used to build
// the accumulated project context handed to the implement collaborator.
// A missing log file returns an empty string, not an error.
func (l *Log) Tail(ctx context.Context, maxLines int) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	f, err := os.Open(l.path) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read progress log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > maxLines {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read progress log: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

// formatEntry renders one entry. Multi-line notes are indented beneath the
// header line so entries stay visually grouped in the text file.
func formatEntry(e Entry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] role=%s session=%s",
		e.Timestamp.UTC().Format(time.RFC3339), e.Role, e.SessionID))
	if e.FeatureID != "" {
		sb.WriteString(" feature=" + e.FeatureID)
	}
	sb.WriteString(" outcome=" + string(e.Outcome))
	sb.WriteString("\n")
	if e.Notes != "" {
		for _, line := range strings.Split(strings.TrimRight(e.Notes, "\n"), "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}
	return sb.String()
}
