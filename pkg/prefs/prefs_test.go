package prefs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/prefs"
)

func TestFileStore_MissingFileGivesDefaults(t *testing.T) {
	t.Parallel()

	store := prefs.NewFileStore(filepath.Join(t.TempDir(), "none.yaml"))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prefs.Default(), got)
}

func TestFileStore_RoundTripAndPartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	store := prefs.NewFileStore(path)
	ctx := context.Background()

	want := prefs.Default()
	want.ScrollSync = false
	want.EditorTheme = "dark"
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, os.WriteFile(path, []byte("show_toc: true\n"), 0o644))
	got, err = store.Load(ctx)
	require.NoError(t, err)

	expected := prefs.Default()
	expected.ShowTOC = true
	assert.Equal(t, expected, got)
}

func TestFileStore_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scroll_sync: [nope"), 0o644))

	got, err := prefs.NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, prefs.Default(), got)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := prefs.NewMemoryStore()
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefs.Default(), got)

	got.ShowPreview = false
	require.NoError(t, store.Save(ctx, got))

	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, again.ShowPreview)
}
