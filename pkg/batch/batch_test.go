package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/batch"
	"github.com/yaklabco/mdnote/pkg/render"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"readme.md":            "# Readme",
		"docs/guide.md":        "# Guide",
		"docs/api.MARKDOWN":    "# API",
		"docs/notes.txt":       "plain",
		".hidden/secret.md":    "# Secret",
		"docs/.draft.md":       "# Draft",
		"archive/old/note.md":  "# Old",
		"drafts/wip/ideas.md":  "# Ideas",
		"drafts/wip/ideas.txt": "plain",
	})

	tests := []struct {
		name    string
		opts    batch.Options
		want    []string
		wantErr bool
	}{
		{
			name: "whole tree",
			opts: batch.Options{},
			want: []string{"archive/old/note.md", "docs/api.MARKDOWN", "docs/guide.md", "drafts/wip/ideas.md", "readme.md"},
		},
		{
			name: "exclude globs",
			opts: batch.Options{ExcludeGlobs: []string{"drafts/**", "**/old"}},
			want: []string{"docs/api.MARKDOWN", "docs/guide.md", "readme.md"},
		},
		{
			name: "single file and directory deduplicated",
			opts: batch.Options{Paths: []string{"docs/guide.md", "docs"}},
			want: []string{"docs/api.MARKDOWN", "docs/guide.md"},
		},
		{
			name: "custom extensions",
			opts: batch.Options{Paths: []string{"docs"}, Extensions: []string{".txt"}},
			want: []string{"docs/notes.txt"},
		},
		{
			name:    "missing path",
			opts:    batch.Options{Paths: []string{"nope"}},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			opts := testCase.opts
			opts.WorkingDir = dir

			files, err := batch.Discover(context.Background(), opts)
			if testCase.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := make([]string, 0, len(testCase.want))
			for _, rel := range testCase.want {
				want = append(want, filepath.Join(dir, rel))
			}
			assert.Equal(t, want, files)
		})
	}
}

func TestDiscover_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := batch.Discover(ctx, batch.Options{WorkingDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMatchGlob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel     string
		pattern string
		want    bool
	}{
		{"drafts/a.md", "drafts/**", true},
		{"drafts", "drafts/**", true},
		{"draftsx/a.md", "drafts/**", false},
		{"a/b/archive", "**/archive", true},
		{"a/b/archive/c.md", "**/archive", false},
		{"a/b/c.md", "**/*.md", true},
		{"docs/todo.md", "todo.md", true},
		{"docs/todo.md", "*.md", true},
		{"docs/todo.md", "other/*.md", false},
		{"anything/at/all", "**", true},
	}

	for _, testCase := range tests {
		t.Run(testCase.rel+"|"+testCase.pattern, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, batch.MatchGlob(testCase.rel, testCase.pattern))
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	work := filepath.Join("/", "notes")
	out := filepath.Join("/", "site")

	assert.Equal(t, filepath.Join(out, "docs", "guide.html"),
		batch.OutputPath(work, out, filepath.Join(work, "docs", "guide.md")))
	assert.Equal(t, filepath.Join(out, "elsewhere.html"),
		batch.OutputPath(work, out, filepath.Join("/", "other", "elsewhere.markdown")))
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.md":        "# Alpha\n",
		"sub/b.md":    "# Beta\n\ntext\n",
		"sub/c.md":    "# Gamma\n",
		"skip/d.md":   "# Delta\n",
		"sub/e.notes": "ignored",
	})
	outDir := filepath.Join(t.TempDir(), "site")
	renderer := batch.New(render.NewProjector())
	opts := batch.Options{WorkingDir: dir, OutputDir: outDir, ExcludeGlobs: []string{"skip/**"}, Jobs: 2}

	result, err := renderer.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, batch.Stats{FilesDiscovered: 3, FilesRendered: 3}, result.Stats)
	assert.False(t, result.HasFailures())
	require.Len(t, result.Files, 3)
	assert.Equal(t, filepath.Join(dir, "a.md"), result.Files[0].Path)

	html, err := os.ReadFile(filepath.Join(outDir, "sub", "b.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `<h1 id="beta">Beta</h1>`)
	assert.NoFileExists(t, filepath.Join(outDir, "skip", "d.html"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.md"), []byte("# Changed\n"), 0o600))

	result, err = renderer.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, batch.Stats{FilesDiscovered: 3, FilesRendered: 1, FilesUnchanged: 2}, result.Stats)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	renderer := batch.New(render.NewProjector())

	_, err := renderer.Run(context.Background(), batch.Options{WorkingDir: t.TempDir()})
	require.Error(t, err, "output directory is required")

	dir := writeTree(t, map[string]string{"a.md": "# A\n"})
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	result, err := renderer.Run(context.Background(), batch.Options{WorkingDir: dir, OutputDir: blocker})
	require.NoError(t, err)
	assert.True(t, result.HasFailures())
	assert.Equal(t, 1, result.Stats.FilesErrored)
	assert.Error(t, result.Files[0].Error)
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()

	result, err := batch.New(render.NewProjector()).Run(context.Background(),
		batch.Options{WorkingDir: t.TempDir(), OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
}
