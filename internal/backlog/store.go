// Package backlog provides feature backlog persistence for CADENCE.
// This package implements the storage layer for the project backlog file,
// with atomic writes and file locking for data integrity.
package backlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrz1836/cadence/internal/constants"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
	"github.com/mrz1836/cadence/internal/flock"
)

// LockTimeout is the maximum duration to wait for acquiring the backlog lock.
const LockTimeout = 5 * time.Second

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// Store defines the interface for backlog persistence operations.
type Store interface {
	// Load reads the full backlog for the project.
	// Returns ErrBacklogNotFound if no backlog exists,
	// ErrCorruptState if the file fails to parse or validate.
	Load(ctx context.Context) (*domain.Backlog, error)

	// Save atomically persists the full backlog (replace-on-write).
	// A crash mid-write never leaves a partially-written backlog.
	Save(ctx context.Context, b *domain.Backlog) error

	// Get retrieves one feature by ID.
	// Returns ErrFeatureNotFound if the ID is absent.
	Get(ctx context.Context, id string) (*domain.Feature, error)

	// Update applies a field-level mutation to one feature and re-saves.
	// Returns ErrFeatureNotFound if the ID is absent.
	Update(ctx context.Context, id string, mutate func(*domain.Feature)) error

	// All returns every feature in backlog insertion order.
	All(ctx context.Context) ([]domain.Feature, error)
}

// FileStore implements Store using a single JSON file in the project directory.
type FileStore struct {
	projectPath string
}

// NewFileStore creates a FileStore rooted at the given project directory.
// If projectPath is empty, the current working directory is used.
func NewFileStore(projectPath string) (*FileStore, error) {
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
	return &FileStore{projectPath: abs}, nil
}

// ProjectPath returns the absolute project directory the store operates on.
func (s *FileStore) ProjectPath() string {
	return s.projectPath
}

// BacklogPath returns the absolute path of the backlog file.
func (s *FileStore) BacklogPath() string {
	return filepath.Join(s.projectPath, constants.BacklogFileName)
}

// Load reads the full backlog for the project.
func (s *FileStore) Load(ctx context.Context) (*domain.Backlog, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load backlog: %w", err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	return s.loadLocked()
}

// loadLocked reads and validates the backlog file. Caller holds the lock.
func (s *FileStore) loadLocked() (*domain.Backlog, error) {
	data, err := os.ReadFile(s.BacklogPath()) //#nosec G304 -- path is constructed from the validated project root
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no backlog at %s: %w", s.BacklogPath(), cadenceerrors.ErrBacklogNotFound)
		}
		return nil, fmt.Errorf("failed to read backlog: %w", err)
	}

	var b domain.Backlog
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse backlog: %w: %w", cadenceerrors.ErrCorruptState, err)
	}

	// Reject malformed records at load time rather than propagating
	// missing-field errors into scheduling logic.
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backlog record: %w: %w", cadenceerrors.ErrCorruptState, err)
	}

	return &b, nil
}

// Save atomically persists the full backlog.
func (s *FileStore) Save(ctx context.Context, b *domain.Backlog) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if b == nil {
		return fmt.Errorf("failed to save backlog: backlog %w", cadenceerrors.ErrEmptyValue)
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("failed to save backlog: %w", err)
	}

	if b.SchemaVersion == "" {
		b.SchemaVersion = constants.BacklogSchemaVersion
	}

	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to save backlog: %w", err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to save backlog: %w", err)
	}

	if err := atomicWrite(s.BacklogPath(), data); err != nil {
		return fmt.Errorf("failed to save backlog: %w", err)
	}
	return nil
}

// Get retrieves one feature by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*domain.Feature, error) {
	if id == "" {
		return nil, fmt.Errorf("failed to get feature: id %w", cadenceerrors.ErrEmptyValue)
	}

	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.Get(id)
}

// Update applies a mutation to one feature and atomically re-saves the backlog.
func (s *FileStore) Update(ctx context.Context, id string, mutate func(*domain.Feature)) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if id == "" {
		return fmt.Errorf("failed to update feature: id %w", cadenceerrors.ErrEmptyValue)
	}
	if mutate == nil {
		return fmt.Errorf("failed to update feature: mutation %w", cadenceerrors.ErrEmptyValue)
	}

	// Hold the lock across read-modify-write so the mutation applies to
	// the current on-disk state.
	lockFile, err := s.acquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to update feature '%s': %w", id, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	b, err := s.loadLocked()
	if err != nil {
		return err
	}

	feature, err := b.Get(id)
	if err != nil {
		return err
	}
	mutate(feature)

	if err := b.Validate(); err != nil {
		return fmt.Errorf("failed to update feature '%s': %w", id, err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to update feature '%s': %w", id, err)
	}
	if err := atomicWrite(s.BacklogPath(), data); err != nil {
		return fmt.Errorf("failed to update feature '%s': %w", id, err)
	}
	return nil
}

// All returns every feature in backlog insertion order.
func (s *FileStore) All(ctx context.Context) ([]domain.Feature, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.Features, nil
}

// lockFilePath returns the path of the backlog lock file.
func (s *FileStore) lockFilePath() string {
	return s.BacklogPath() + ".lock"
}

// acquireLock acquires an exclusive file lock for the backlog.
// It respects context cancellation during the lock acquisition retry loop.
func (s *FileStore) acquireLock(ctx context.Context) (*os.File, error) {
	if err := os.MkdirAll(s.projectPath, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	f, err := os.OpenFile(s.lockFilePath(), os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed internally
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", cadenceerrors.ErrLockTimeout)
		}

		time.Sleep(50 * time.Millisecond)
	}
}

// releaseLock releases a file lock.
func (s *FileStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := flock.Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk before rename so the replacement is durable
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
