package autosave_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/autosave"
	"github.com/yaklabco/mdnote/pkg/clock"
	"github.com/yaklabco/mdnote/pkg/editor"
	"github.com/yaklabco/mdnote/pkg/textbuf"
)

type recordingSaver struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (r *recordingSaver) Save(_ context.Context, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, content)
	return nil
}

func (r *recordingSaver) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *recordingSaver) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

func newController(text string) *editor.Controller {
	ctrl := editor.NewController()
	ctrl.Attach(textbuf.New(text))
	return ctrl
}

func TestLoop_SavesOnlyWhenDirty(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	ctrl := newController("start")
	saver := &recordingSaver{}

	loop := autosave.NewLoop(ctrl, saver, autosave.WithClock(clk))
	loop.Start(context.Background())
	defer loop.Stop()

	clk.FastForward(autosave.DefaultInterval)
	assert.Empty(t, saver.calls(), "clean document is not saved")

	require.NoError(t, ctrl.SetContent("edited"))
	assert.True(t, loop.Dirty())

	clk.FastForward(autosave.DefaultInterval - time.Millisecond)
	assert.Empty(t, saver.calls())

	clk.FastForward(time.Millisecond)
	assert.Equal(t, []string{"edited"}, saver.calls())
	assert.False(t, loop.Dirty())

	clk.FastForward(3 * autosave.DefaultInterval)
	assert.Len(t, saver.calls(), 1)
}

func TestLoop_FailedSaveStaysDirty(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	ctrl := newController("")
	saver := &recordingSaver{err: errors.New("offline")}

	var reported []error
	loop := autosave.NewLoop(ctrl, saver,
		autosave.WithClock(clk),
		autosave.WithInterval(time.Second),
		autosave.WithOnError(func(err error) { reported = append(reported, err) }),
	)
	loop.Start(context.Background())
	defer loop.Stop()

	require.NoError(t, ctrl.SetContent("unsaved"))
	clk.FastForward(time.Second)

	assert.True(t, loop.Dirty())
	require.Len(t, reported, 1)

	saver.setErr(nil)
	clk.FastForward(time.Second)

	assert.False(t, loop.Dirty())
	assert.Equal(t, []string{"unsaved"}, saver.calls())
}

func TestLoop_EditDuringSaveKeepsDirty(t *testing.T) {
	t.Parallel()

	ctrl := newController("")
	var loop *autosave.Loop
	saver := autosave.SaverFunc(func(_ context.Context, _ string) error {
		loop.MarkDirty()
		return nil
	})
	loop = autosave.NewLoop(ctrl, saver)
	loop.MarkDirty()

	saved, err := loop.SaveIfDirty(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, loop.Dirty())
}

func TestLoop_StopHaltsTicks(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	ctrl := newController("")
	saver := &recordingSaver{}

	loop := autosave.NewLoop(ctrl, saver, autosave.WithClock(clk))
	loop.Start(context.Background())
	loop.Stop()

	require.NoError(t, ctrl.SetContent("x"))
	assert.False(t, loop.Dirty(), "stopped loop ignores edits")

	loop.MarkDirty()
	clk.FastForward(2 * autosave.DefaultInterval)
	assert.Empty(t, saver.calls())
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	loadedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := autosave.LoadedDocument{Content: "server", UpdatedAt: loadedAt}

	tests := []struct {
		name         string
		draft        *autosave.Draft
		wantContent  string
		wantRestored bool
	}{
		{name: "no draft", draft: nil, wantContent: "server"},
		{name: "newer draft wins", draft: &autosave.Draft{Content: "local", UpdatedAt: loadedAt.Add(time.Minute)}, wantContent: "local", wantRestored: true},
		{name: "older draft ignored", draft: &autosave.Draft{Content: "local", UpdatedAt: loadedAt.Add(-time.Minute)}, wantContent: "server"},
		{name: "same instant ignored", draft: &autosave.Draft{Content: "local", UpdatedAt: loadedAt}, wantContent: "server"},
		{name: "identical content", draft: &autosave.Draft{Content: "server", UpdatedAt: loadedAt.Add(time.Hour)}, wantContent: "server"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			content, restored := autosave.Reconcile(doc, testCase.draft)
			assert.Equal(t, testCase.wantContent, content)
			assert.Equal(t, testCase.wantRestored, restored)
		})
	}
}

func TestDraftWriter_DebouncesSnapshots(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewTestClockAt(start)
	store := autosave.NewMemoryStore()
	ctrl := newController("")
	ctx := context.Background()

	writer := autosave.NewDraftWriter(store, "doc-1", autosave.WithClock(clk))
	stop := writer.Watch(ctx, ctrl)
	defer stop()

	require.NoError(t, ctrl.SetContent("a"))
	clk.FastForward(500 * time.Millisecond)
	require.NoError(t, ctrl.SetContent("ab"))
	assert.True(t, writer.Pending())

	clk.FastForward(999 * time.Millisecond)
	draft, err := store.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, draft)

	clk.FastForward(time.Millisecond)
	draft, err = store.Load(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "ab", draft.Content)
	assert.Equal(t, start.Add(1500*time.Millisecond), draft.UpdatedAt)

	require.NoError(t, writer.Clear(ctx))
	draft, err = store.Load(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestDraftWriter_ClearCancelsPending(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	store := autosave.NewMemoryStore()
	ctx := context.Background()

	writer := autosave.NewDraftWriter(store, "doc", autosave.WithClock(clk))
	writer.Snapshot(ctx, "late")
	require.NoError(t, writer.Clear(ctx))

	clk.FastForward(time.Minute)
	draft, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestDraftStores(t *testing.T) {
	t.Parallel()

	sqliteStore, err := autosave.OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	stores := []struct {
		name  string
		store autosave.DraftStore
	}{
		{name: "memory", store: autosave.NewMemoryStore()},
		{name: "file", store: autosave.NewFileStore(filepath.Join(t.TempDir(), "drafts"))},
		{name: "sqlite", store: sqliteStore},
	}

	for _, testCase := range stores {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := testCase.store
			when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			draft, err := store.Load(ctx, "a/b")
			require.NoError(t, err)
			assert.Nil(t, draft)

			require.NoError(t, store.Save(ctx, "a/b", autosave.Draft{Content: "one", UpdatedAt: when}))
			require.NoError(t, store.Save(ctx, "a/b", autosave.Draft{Content: "two", UpdatedAt: when.Add(time.Second)}))

			draft, err = store.Load(ctx, "a/b")
			require.NoError(t, err)
			require.NotNil(t, draft)
			assert.Equal(t, "two", draft.Content)
			assert.True(t, draft.UpdatedAt.Equal(when.Add(time.Second)))

			require.NoError(t, store.Delete(ctx, "a/b"))
			require.NoError(t, store.Delete(ctx, "a/b"))

			draft, err = store.Load(ctx, "a/b")
			require.NoError(t, err)
			assert.Nil(t, draft)

			require.ErrorIs(t, store.Save(ctx, "", autosave.Draft{}), autosave.ErrEmptyID)
		})
	}
}

func TestFileStore_WritesPrivateJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := autosave.NewFileStore(dir)
	require.NoError(t, store.Save(context.Background(), "doc 1", autosave.Draft{Content: "hi"}))

	path := store.Path("doc 1")
	assert.Equal(t, filepath.Join(dir, "doc%201.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":"hi"`)
}
