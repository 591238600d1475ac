package progress

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mrz1836/cadence/internal/domain"
)

// Stats summarizes the session history recorded in the progress log.
type Stats struct {
	// Sessions is the number of entries in the log.
	Sessions int

	// Completed is the number of entries with a completed outcome.
	Completed int
}

// ReadStats scans the progress log and counts sessions and completed
// features. A missing log yields zero stats, not an error — the project
// simply has no history yet.
func (l *Log) ReadStats(ctx context.Context) (Stats, error) {
	select {
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	default:
	}

	f, err := os.Open(l.path) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("failed to read progress log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var stats Stats
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		// Entry headers start with a bracketed timestamp; note lines are indented.
		if !strings.HasPrefix(line, "[") {
			continue
		}
		stats.Sessions++
		if strings.HasSuffix(line, "outcome="+string(domain.OutcomeCompleted)) {
			stats.Completed++
		}
	}
	if err := scanner.Err(); err != nil {
		return Stats{}, fmt.Errorf("failed to read progress log: %w", err)
	}
	return stats, nil
}
