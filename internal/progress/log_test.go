package progress

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cadence/internal/clock"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

func testClock() *clock.FixedClock {
	return &clock.FixedClock{Time: time.Date(2024, 6, 15, 10, 30, 45, 0, time.UTC)}
}

func TestLog_Append_FormatsEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := NewLog(dir, testClock())

	err := l.Append(ctx, Entry{
		Role:      "coding-agent",
		SessionID: "sess-20240615-103045",
		FeatureID: "auth-login",
		Outcome:   domain.OutcomeCompleted,
		Notes:     "implemented login form\nadded session cookie",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "claude-progress.txt"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[2024-06-15T10:30:45Z] role=coding-agent session=sess-20240615-103045 feature=auth-login outcome=completed")
	assert.Contains(t, content, "    implemented login form")
	assert.Contains(t, content, "    added session cookie")
}

func TestLog_Append_RequiresRole(t *testing.T) {
	l := NewLog(t.TempDir(), testClock())

	err := l.Append(context.Background(), Entry{SessionID: "sess-x"})
	assert.ErrorIs(t, err, cadenceerrors.ErrEmptyValue)
}

func TestLog_Append_IsAppendOnly(t *testing.T) {
	ctx := context.Background()
	clk := testClock()
	l := NewLog(t.TempDir(), clk)

	require.NoError(t, l.Append(ctx, Entry{Role: "coding-agent", SessionID: "s1", Outcome: domain.OutcomeCompleted}))
	clk.Advance(time.Minute)
	require.NoError(t, l.Append(ctx, Entry{Role: "coding-agent", SessionID: "s2", Outcome: domain.OutcomeVerifyFailed}))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	content := string(data)
	first := strings.Index(content, "session=s1")
	second := strings.Index(content, "session=s2")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first, "later entries append after earlier ones")
}

func TestLog_Tail(t *testing.T) {
	ctx := context.Background()
	l := NewLog(t.TempDir(), testClock())

	t.Run("missing file yields empty string", func(t *testing.T) {
		out, err := l.Tail(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, Entry{
			Role:      "coding-agent",
			SessionID: string(rune('a' + i)),
			Outcome:   domain.OutcomeCompleted,
		}))
	}

	t.Run("returns only the most recent lines", func(t *testing.T) {
		out, err := l.Tail(ctx, 2)
		require.NoError(t, err)

		lines := strings.Split(out, "\n")
		assert.Len(t, lines, 2)
		assert.Contains(t, lines[0], "session=d")
		assert.Contains(t, lines[1], "session=e")
	})

	t.Run("large limit returns everything", func(t *testing.T) {
		out, err := l.Tail(ctx, 100)
		require.NoError(t, err)
		assert.Contains(t, out, "session=a")
		assert.Contains(t, out, "session=e")
	})
}

func TestLog_ReadStats(t *testing.T) {
	ctx := context.Background()
	l := NewLog(t.TempDir(), testClock())

	t.Run("missing file yields zero stats", func(t *testing.T) {
		stats, err := l.ReadStats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Sessions)
		assert.Zero(t, stats.Completed)
	})

	entries := []Entry{
		{Role: "coding-agent", SessionID: "s1", Outcome: domain.OutcomeCompleted, Notes: "multi\nline notes"},
		{Role: "coding-agent", SessionID: "s2", Outcome: domain.OutcomeVerifyFailed},
		{Role: "coding-agent", SessionID: "s3", Outcome: domain.OutcomeCompleted},
		{Role: "coding-agent", SessionID: "s4", Outcome: domain.OutcomeBlocked},
	}
	for _, e := range entries {
		require.NoError(t, l.Append(ctx, e))
	}

	stats, err := l.ReadStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Sessions, "indented note lines must not count as entries")
	assert.Equal(t, 2, stats.Completed)
}

func TestLog_ContextCanceled(t *testing.T) {
	l := NewLog(t.TempDir(), testClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Append(ctx, Entry{Role: "coding-agent"}), context.Canceled)

	_, err := l.Tail(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = l.ReadStats(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
