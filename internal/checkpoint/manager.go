// Package checkpoint provides point-in-time snapshots of project state.
//
// A checkpoint captures the backlog file and progress log, plus metadata
// (session, description, timestamp, git hash). Checkpoints are append-only:
// restoring one overwrites the live files but never deletes later
// checkpoints.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/cadence/internal/clock"
	"github.com/mrz1836/cadence/internal/constants"
	"github.com/mrz1836/cadence/internal/ctxutil"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600

	// maxConcurrentReads bounds parallel metadata reads during List.
	maxConcurrentReads = 16
)

// snapshotFiles are the project files captured by and restored from a
// checkpoint. The workspace file tree itself is referenced opaquely via
// the recorded git hash.
var snapshotFiles = []string{ //nolint:gochecknoglobals // Read-only file list
	constants.BacklogFileName,
	constants.ProgressLogFileName,
}

// HeadResolver reports the current workspace commit hash, when available.
// Implemented by git.Runner. A nil resolver records no hash.
type HeadResolver interface {
	Head(ctx context.Context) (string, error)
}

// Manager creates, lists, and restores checkpoints for one project.
type Manager struct {
	projectPath string
	clock       clock.Clock
	head        HeadResolver
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for checkpoint timestamps.
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) {
		m.clock = clk
	}
}

// WithHeadResolver sets the resolver used to record the workspace commit
// hash in checkpoint metadata.
func WithHeadResolver(head HeadResolver) Option {
	return func(m *Manager) {
		m.head = head
	}
}

// NewManager creates a checkpoint manager rooted at the given project directory.
func NewManager(projectPath string, opts ...Option) (*Manager, error) {
	if projectPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		projectPath = cwd
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}

	m := &Manager{
		projectPath: abs,
		clock:       clock.RealClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Dir returns the checkpoints directory for the project.
func (m *Manager) Dir() string {
	return filepath.Join(m.projectPath, constants.CadenceDir, constants.CheckpointsDir)
}

// Save snapshots the current backlog and progress log under a new
// checkpoint ID and returns it.
//
// The ID combines a random suffix with the creation timestamp
// (cp-<8 hex>-<YYYYMMDD-HHMMSS>), guaranteeing uniqueness even under
// rapid successive calls within the same second.
func (m *Manager) Save(ctx context.Context, sessionID, description string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	if sessionID == "" {
		return "", fmt.Errorf("failed to save checkpoint: session id %w", cadenceerrors.ErrEmptyValue)
	}

	now := m.clock.Now().UTC()
	checkpointID := fmt.Sprintf("cp-%s-%s", uuid.New().String()[:8], now.Format("20060102-150405"))
	checkpointDir := filepath.Join(m.Dir(), checkpointID)

	if err := os.MkdirAll(checkpointDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	for _, name := range snapshotFiles {
		src := filepath.Join(m.projectPath, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue // nothing to snapshot yet
		}
		if err := copyFile(src, filepath.Join(checkpointDir, name)); err != nil {
			_ = os.RemoveAll(checkpointDir)
			return "", fmt.Errorf("failed to snapshot %s: %w", name, err)
		}
	}

	meta := domain.Checkpoint{
		CheckpointID: checkpointID,
		SessionID:    sessionID,
		Description:  description,
		Timestamp:    now,
		ProjectPath:  m.projectPath,
	}
	if m.head != nil {
		if hash, err := m.head.Head(ctx); err == nil {
			meta.GitHash = hash
		}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = os.RemoveAll(checkpointDir)
		return "", fmt.Errorf("failed to save checkpoint metadata: %w", err)
	}
	metaPath := filepath.Join(checkpointDir, constants.CheckpointMetadataFileName)
	if err := os.WriteFile(metaPath, data, filePerm); err != nil {
		_ = os.RemoveAll(checkpointDir)
		return "", fmt.Errorf("failed to save checkpoint metadata: %w", err)
	}

	return checkpointID, nil
}

// List returns all checkpoints ordered by creation time ascending.
// Directories without parseable metadata are skipped.
func (m *Manager) List(ctx context.Context) ([]domain.Checkpoint, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(m.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Checkpoint{}, nil
		}
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	results := make([]*domain.Checkpoint, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "cp-") {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			meta, err := m.readMetadata(entry.Name())
			if err != nil {
				return nil // skip unreadable checkpoints
			}
			results[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	checkpoints := make([]domain.Checkpoint, 0, len(results))
	for _, meta := range results {
		if meta != nil {
			checkpoints = append(checkpoints, *meta)
		}
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		if checkpoints[i].Timestamp.Equal(checkpoints[j].Timestamp) {
			return checkpoints[i].CheckpointID < checkpoints[j].CheckpointID
		}
		return checkpoints[i].Timestamp.Before(checkpoints[j].Timestamp)
	})

	return checkpoints, nil
}

// Restore overwrites the live backlog and progress log with the named
// checkpoint's snapshot. Destructive from the caller's perspective; the
// overwritten state may still exist as an earlier checkpoint.
func (m *Manager) Restore(ctx context.Context, checkpointID string) (*domain.Checkpoint, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if checkpointID == "" {
		return nil, fmt.Errorf("failed to restore checkpoint: id %w", cadenceerrors.ErrEmptyValue)
	}

	checkpointDir := filepath.Join(m.Dir(), checkpointID)
	if _, err := os.Stat(checkpointDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("checkpoint %q: %w", checkpointID, cadenceerrors.ErrCheckpointNotFound)
	}

	meta, err := m.readMetadata(checkpointID)
	if err != nil {
		return nil, err
	}

	for _, name := range snapshotFiles {
		src := filepath.Join(checkpointDir, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(m.projectPath, name)); err != nil {
			return nil, fmt.Errorf("failed to restore %s: %w", name, err)
		}
	}

	return meta, nil
}

// readMetadata loads and parses one checkpoint's metadata file.
func (m *Manager) readMetadata(checkpointID string) (*domain.Checkpoint, error) {
	metaPath := filepath.Join(m.Dir(), checkpointID, constants.CheckpointMetadataFileName)
	data, err := os.ReadFile(metaPath) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checkpoint %q: %w", checkpointID, cadenceerrors.ErrCheckpointNotFound)
		}
		return nil, fmt.Errorf("failed to read checkpoint metadata: %w", err)
	}

	var meta domain.Checkpoint
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %q: %w: %w", checkpointID, cadenceerrors.ErrCorruptState, err)
	}
	return &meta, nil
}

// copyFile copies src to dst, replacing dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src) //#nosec G304 -- paths are constructed internally
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- paths are constructed internally
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
