package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh store in a temp directory and tears it down
// with the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "hydra.db"))
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestOpenIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Open())
	require.NoError(t, store.Open())
}

func TestClosedStoreReturnsError(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "hydra.db"))
	require.NoError(t, store.Open())
	require.NoError(t, store.Close())

	_, err := store.ListVideos()
	require.Error(t, err)

	// Close on a closed store is a no-op
	require.NoError(t, store.Close())
}
