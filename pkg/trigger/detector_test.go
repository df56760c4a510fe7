package trigger_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/clock"
	"github.com/yaklabco/mdnote/pkg/editor"
	"github.com/yaklabco/mdnote/pkg/textbuf"
	"github.com/yaklabco/mdnote/pkg/trigger"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results []trigger.LinkTarget
	err     error
	hook    func(query string)
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]trigger.LinkTarget, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(query)
	}
	return f.results, f.err
}

func (f *fakeSearcher) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func setup(t *testing.T, text string, cursor int, opts ...trigger.Option) (*editor.Controller, *trigger.Detector) {
	t.Helper()

	ctrl := editor.NewController()
	ctrl.Attach(textbuf.New(text))
	require.NoError(t, ctrl.Select(cursor, cursor))

	detector := trigger.NewDetector(ctrl, opts...)
	stop := detector.Start()
	t.Cleanup(stop)

	return ctrl, detector
}

func TestDetector_SlashMenuFiltersAndApplies(t *testing.T) {
	t.Parallel()

	ctrl, detector := setup(t, "", 0)

	require.NoError(t, ctrl.InsertAtCursor("hello /hea"))

	menu := detector.Slash()
	require.True(t, menu.Open)
	assert.Equal(t, "hea", menu.Filter)
	assert.Equal(t, 6, menu.Origin)
	require.Len(t, menu.Items, 3)
	assert.Equal(t, "h1", menu.Items[0].ID)

	assert.True(t, detector.HandleKey(trigger.KeyDown))
	assert.Equal(t, 1, detector.Slash().Highlight)

	assert.True(t, detector.HandleKey(trigger.KeyEnter))
	assert.Equal(t, "## hello ", ctrl.Content())
	assert.Equal(t, textbuf.Cursor(9), ctrl.Selection())
	assert.False(t, detector.Slash().Open)
}

func TestDetector_SlashMenuNavigationWraps(t *testing.T) {
	t.Parallel()

	ctrl, detector := setup(t, "", 0)
	require.NoError(t, ctrl.InsertAtCursor("/hea"))

	assert.True(t, detector.HandleKey(trigger.KeyUp))
	assert.Equal(t, 2, detector.Slash().Highlight)

	assert.True(t, detector.HandleKey(trigger.KeyDown))
	assert.Equal(t, 0, detector.Slash().Highlight)

	assert.True(t, detector.HandleKey(trigger.KeyEscape))
	assert.False(t, detector.Slash().Open)
	assert.Equal(t, "/hea", ctrl.Content())

	assert.False(t, detector.HandleKey(trigger.KeyDown), "no menu open")
}

func TestDetector_SlashMenuClosesOnSpace(t *testing.T) {
	t.Parallel()

	ctrl, detector := setup(t, "", 0)

	require.NoError(t, ctrl.InsertAtCursor("/co"))
	assert.True(t, detector.Slash().Open)

	require.NoError(t, ctrl.InsertAtCursor(" "))
	assert.False(t, detector.Slash().Open)
}

func TestDetector_SelectionChangesAreIgnored(t *testing.T) {
	t.Parallel()

	ctrl, detector := setup(t, "/x", 0)

	require.NoError(t, ctrl.Select(2, 2))
	assert.False(t, detector.Slash().Open)
}

func TestDetector_WikilinkSearchIsDebounced(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	searcher := &fakeSearcher{results: []trigger.LinkTarget{{ID: "42", Title: "Project"}}}
	ctrl, detector := setup(t, "See ", 4, trigger.WithClock(clk), trigger.WithSearcher(searcher))

	require.NoError(t, ctrl.InsertAtCursor("[[P"))
	require.NoError(t, ctrl.InsertAtCursor("ro"))

	menu := detector.Wikilink()
	require.True(t, menu.Open)
	assert.True(t, menu.Loading)
	assert.Equal(t, "Pro", menu.Filter)

	clk.FastForward(199 * time.Millisecond)
	assert.Empty(t, searcher.Queries())

	clk.FastForward(time.Millisecond)
	assert.Equal(t, []string{"Pro"}, searcher.Queries())

	menu = detector.Wikilink()
	assert.False(t, menu.Loading)
	assert.Equal(t, []trigger.LinkTarget{{ID: "42", Title: "Project"}}, menu.Results)

	assert.True(t, detector.HandleKey(trigger.KeyEnter))
	assert.Equal(t, "See [Project](/docs/42)", ctrl.Content())
	assert.Equal(t, textbuf.Cursor(23), ctrl.Selection())
	assert.False(t, detector.Wikilink().Open)
}

func TestDetector_WikilinkResultsAreCapped(t *testing.T) {
	t.Parallel()

	results := make([]trigger.LinkTarget, 12)
	for i := range results {
		results[i] = trigger.LinkTarget{ID: strconv.Itoa(i), Title: "Doc " + strconv.Itoa(i)}
	}

	clk := clock.NewTestClock()
	ctrl, detector := setup(t, "", 0,
		trigger.WithClock(clk),
		trigger.WithSearcher(&fakeSearcher{results: results}),
	)

	require.NoError(t, ctrl.InsertAtCursor("[[Doc"))
	clk.FastForward(trigger.DefaultSearchDelay)

	assert.Len(t, detector.Wikilink().Results, trigger.DefaultResultLimit)
}

func TestDetector_StaleWikilinkResultsAreDropped(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	searcher := &fakeSearcher{results: []trigger.LinkTarget{{ID: "1", Title: "A"}}}
	ctrl, detector := setup(t, "", 0, trigger.WithClock(clk), trigger.WithSearcher(searcher))

	searcher.hook = func(query string) {
		if query == "a" {
			require.NoError(t, ctrl.InsertAtCursor("b"))
		}
	}

	require.NoError(t, ctrl.InsertAtCursor("[[a"))
	clk.FastForward(trigger.DefaultSearchDelay)

	menu := detector.Wikilink()
	assert.Equal(t, "ab", menu.Filter)
	assert.Empty(t, menu.Results, "results for an outdated query are discarded")
	assert.True(t, menu.Loading)

	clk.FastForward(trigger.DefaultSearchDelay)
	assert.Equal(t, []string{"a", "ab"}, searcher.Queries())
	assert.Len(t, detector.Wikilink().Results, 1)
}

func TestDetector_WikilinkSearchErrorClearsResults(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	searcher := &fakeSearcher{err: errors.New("offline")}
	ctrl, detector := setup(t, "", 0, trigger.WithClock(clk), trigger.WithSearcher(searcher))

	require.NoError(t, ctrl.InsertAtCursor("[[x"))
	clk.FastForward(trigger.DefaultSearchDelay)

	menu := detector.Wikilink()
	assert.True(t, menu.Open)
	assert.False(t, menu.Loading)
	assert.Empty(t, menu.Results)
	assert.False(t, detector.HandleKey(trigger.KeyEnter))
}

func TestDetector_SelectWikilinkConsumesClosingBrackets(t *testing.T) {
	t.Parallel()

	ctrl, detector := setup(t, "See [[Pro]] now", 9)

	require.NoError(t, detector.SelectWikilink(trigger.LinkTarget{ID: "42", Title: "Project"}))
	assert.Equal(t, "See [Project](/docs/42) now", ctrl.Content())
	assert.Equal(t, textbuf.Cursor(23), ctrl.Selection())
}

func TestDetector_SlashTakesPrecedence(t *testing.T) {
	t.Parallel()

	clk := clock.NewTestClock()
	ctrl, detector := setup(t, "", 0,
		trigger.WithClock(clk),
		trigger.WithSearcher(&fakeSearcher{}),
	)

	require.NoError(t, ctrl.InsertAtCursor("[[a /"))
	require.True(t, detector.Slash().Open)
	require.True(t, detector.Wikilink().Open)

	assert.True(t, detector.HandleKey(trigger.KeyEscape))
	assert.False(t, detector.Slash().Open)
	assert.True(t, detector.Wikilink().Open)
}

type fixedLocator struct{}

func (fixedLocator) CoordsAt(offset int) (float64, float64, bool) {
	return float64(offset) * 10, 20, true
}

func TestDetector_AnchorFromCaretLocator(t *testing.T) {
	t.Parallel()

	ctrl, detector := setup(t, "", 0, trigger.WithCaretLocator(fixedLocator{}))

	require.NoError(t, ctrl.InsertAtCursor("ab /"))

	menu := detector.Slash()
	assert.InDelta(t, 30.0, menu.AnchorX, 1e-9)
	assert.InDelta(t, 20.0, menu.AnchorY, 1e-9)
}
