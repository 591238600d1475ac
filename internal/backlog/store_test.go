package backlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

// testBacklog returns a small two-feature backlog for store tests.
func testBacklog() *domain.Backlog {
	b := domain.NewBacklog("demo")
	b.Features = []domain.Feature{
		{ID: "auth-login", Priority: domain.PriorityCritical, Description: "users can log in"},
		{ID: "auth-logout", Priority: domain.PriorityLow, Description: "users can log out",
			Dependencies: []string{"auth-login"}},
	}
	return b
}

func TestFileStore_SaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, testBacklog()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Project)
	require.Len(t, loaded.Features, 2)
	assert.Equal(t, "auth-login", loaded.Features[0].ID)
	assert.Equal(t, []string{"auth-login"}, loaded.Features[1].Dependencies)
}

func TestFileStore_Load_NotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, cadenceerrors.ErrBacklogNotFound)
}

func TestFileStore_Load_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.BacklogPath(), []byte("{not json"), 0o600))

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, cadenceerrors.ErrCorruptState)
}

func TestFileStore_Load_InvalidRecord(t *testing.T) {
	// Well-formed JSON with a malformed record is corrupt state, not a
	// parse error.
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	raw := `{"schema_version":"1.0","features":[{"id":"","priority":"high","description":"x","passes":false}]}`
	require.NoError(t, os.WriteFile(store.BacklogPath(), []byte(raw), 0o600))

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, cadenceerrors.ErrCorruptState)
}

func TestFileStore_Save_NilBacklog(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = store.Save(context.Background(), nil)
	assert.ErrorIs(t, err, cadenceerrors.ErrEmptyValue)
}

func TestFileStore_Save_LeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, testBacklog()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp"),
			"atomic write should not leave temp file %s", e.Name())
	}
}

func TestFileStore_Load_SurvivesInterruptedSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testBacklog()))

	// A crash between the temp-file write and the rename leaves a partial
	// .tmp behind; the committed file stays authoritative and parseable.
	partial := []byte(`{"project":"demo","features":[{"id":"auth-`)
	require.NoError(t, os.WriteFile(store.BacklogPath()+".tmp", partial, 0o600))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Project)
	require.Len(t, loaded.Features, 2)
	assert.Equal(t, "auth-login", loaded.Features[0].ID)

	// The next save replaces the leftover temp file and commits cleanly.
	loaded.Features[0].Passes = true
	require.NoError(t, store.Save(ctx, loaded))

	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded.Features[0].Passes)
}

func TestFileStore_Get(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testBacklog()))

	f, err := store.Get(ctx, "auth-logout")
	require.NoError(t, err)
	assert.Equal(t, "users can log out", f.Description)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, cadenceerrors.ErrFeatureNotFound)

	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, cadenceerrors.ErrEmptyValue)
}

func TestFileStore_Update(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testBacklog()))

	err = store.Update(ctx, "auth-login", func(f *domain.Feature) {
		f.Passes = true
	})
	require.NoError(t, err)

	// The mutation must be visible on a fresh load, not just in memory.
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	f, err := loaded.Get("auth-login")
	require.NoError(t, err)
	assert.True(t, f.Passes)
}

func TestFileStore_Update_UnknownFeature(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testBacklog()))

	err = store.Update(ctx, "missing", func(f *domain.Feature) { f.Passes = true })
	assert.ErrorIs(t, err, cadenceerrors.ErrFeatureNotFound)
}

func TestFileStore_Update_NilMutation(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = store.Update(context.Background(), "auth-login", nil)
	assert.ErrorIs(t, err, cadenceerrors.ErrEmptyValue)
}

func TestFileStore_All_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testBacklog()))

	features, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "auth-login", features[0].ID)
	assert.Equal(t, "auth-logout", features[1].ID)
}

func TestFileStore_ContextCanceled(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	err = store.Save(ctx, testBacklog())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileStore_ResolvesAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(store.ProjectPath()))
	assert.Equal(t, filepath.Join(store.ProjectPath(), "feature_list.json"), store.BacklogPath())
}
