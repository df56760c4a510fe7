package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/clock"
	"github.com/yaklabco/mdnote/pkg/debounce"
	"github.com/yaklabco/mdnote/pkg/editor"
	"github.com/yaklabco/mdnote/pkg/textbuf"
)

const (
	// DefaultSearchDelay is the quiet period before a wikilink search runs.
	DefaultSearchDelay = 200 * time.Millisecond

	// DefaultResultLimit caps the wikilink results shown.
	DefaultResultLimit = 8
)

// Key is a navigation key forwarded from the editor while a menu is open.
type Key int

// Keys handled by the menus.
const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyEscape
)

// LinkTarget is a document offered by wikilink autocomplete.
type LinkTarget struct {
	ID    string
	Title string
}

// Searcher finds documents by title.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]LinkTarget, error)
}

// SearchFunc adapts a function to Searcher.
type SearchFunc func(ctx context.Context, query string, limit int) ([]LinkTarget, error)

// Search calls f.
func (f SearchFunc) Search(ctx context.Context, query string, limit int) ([]LinkTarget, error) {
	return f(ctx, query, limit)
}

// CaretLocator maps a document offset to screen coordinates.
type CaretLocator interface {
	CoordsAt(offset int) (x, y float64, ok bool)
}

// MenuState is the shared state of both menus.
type MenuState struct {
	Open    bool
	AnchorX float64
	AnchorY float64

	// Filter is the text typed after the trigger.
	Filter string

	// Origin is the offset of the trigger's first character.
	Origin int
}

// SlashMenu is a snapshot of the slash menu.
type SlashMenu struct {
	MenuState
	Items     []Command
	Highlight int
}

// WikilinkMenu is a snapshot of the wikilink menu.
type WikilinkMenu struct {
	MenuState
	Results   []LinkTarget
	Highlight int
	Loading   bool
}

// Option configures a Detector.
type Option func(*Detector)

// WithCommands replaces the default slash commands.
func WithCommands(commands []Command) Option {
	return func(d *Detector) {
		d.commands = commands
	}
}

// WithSearcher sets the wikilink searcher. Without one the wikilink menu
// opens but never gets results.
func WithSearcher(s Searcher) Option {
	return func(d *Detector) {
		d.searcher = s
	}
}

// WithCaretLocator sets the source of menu anchor coordinates.
func WithCaretLocator(l CaretLocator) Option {
	return func(d *Detector) {
		d.locator = l
	}
}

// WithClock sets the clock used for the search debounce.
func WithClock(clk clock.Clock) Option {
	return func(d *Detector) {
		d.clock = clk
	}
}

// WithSearchDelay overrides DefaultSearchDelay.
func WithSearchDelay(delay time.Duration) Option {
	return func(d *Detector) {
		d.delay = delay
	}
}

// WithResultLimit overrides DefaultResultLimit.
func WithResultLimit(limit int) Option {
	return func(d *Detector) {
		if limit > 0 {
			d.limit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithOnUpdate registers a callback invoked after either menu changes.
func WithOnUpdate(fn func()) Option {
	return func(d *Detector) {
		d.onUpdate = fn
	}
}

// Detector watches a controller for slash and wikilink triggers.
type Detector struct {
	ctrl     *editor.Controller
	commands []Command
	searcher Searcher
	locator  CaretLocator
	clock    clock.Clock
	delay    time.Duration
	limit    int
	logger   *log.Logger
	onUpdate func()
	search   *debounce.Debouncer

	mu    sync.Mutex
	slash SlashMenu
	wiki  WikilinkMenu
}

// NewDetector creates a detector for ctrl. Call Start to begin watching.
func NewDetector(ctrl *editor.Controller, opts ...Option) *Detector {
	d := &Detector{
		ctrl:     ctrl,
		commands: DefaultCommands(),
		clock:    clock.DefaultClock{},
		delay:    DefaultSearchDelay,
		limit:    DefaultResultLimit,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.search = debounce.New(d.clock, d.delay)
	return d
}

// Start subscribes to the controller. The returned function stops watching
// and cancels any pending search.
func (d *Detector) Start() func() {
	unsubscribe := d.ctrl.Subscribe(d.HandleChange)
	return func() {
		unsubscribe()
		d.search.Cancel()
	}
}

// Slash returns the current slash menu.
func (d *Detector) Slash() SlashMenu {
	d.mu.Lock()
	defer d.mu.Unlock()

	menu := d.slash
	menu.Items = append([]Command(nil), d.slash.Items...)
	return menu
}

// Wikilink returns the current wikilink menu.
func (d *Detector) Wikilink() WikilinkMenu {
	d.mu.Lock()
	defer d.mu.Unlock()

	menu := d.wiki
	menu.Results = append([]LinkTarget(nil), d.wiki.Results...)
	return menu
}

// HandleChange re-evaluates both triggers after a document change.
// Selection-only changes are ignored.
func (d *Detector) HandleChange(change textbuf.Change) {
	if !change.DocChanged {
		return
	}

	cursor := change.Selection.Head
	d.updateSlash(change.Text, cursor)
	d.updateWikilink(change.Text, cursor)
	d.notify()
}

func (d *Detector) updateSlash(text string, cursor int) {
	filter, origin, ok := DetectSlash(text, cursor)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !ok {
		d.slash = SlashMenu{}
		return
	}

	if !d.slash.Open || d.slash.Filter != filter {
		d.slash.Highlight = 0
	}
	d.slash.MenuState = d.menuState(filter, origin)
	d.slash.Items = FilterCommands(d.commands, filter)
}

func (d *Detector) updateWikilink(text string, cursor int) {
	query, origin, ok := DetectWikilink(text, cursor)

	d.mu.Lock()
	if !ok {
		wasOpen := d.wiki.Open
		d.wiki = WikilinkMenu{}
		d.mu.Unlock()
		if wasOpen {
			d.search.Cancel()
		}
		return
	}

	changed := !d.wiki.Open || d.wiki.Filter != query
	d.wiki.MenuState = d.menuState(query, origin)
	if changed {
		d.wiki.Highlight = 0
		d.wiki.Loading = d.searcher != nil
	}
	d.mu.Unlock()

	if changed && d.searcher != nil {
		d.search.Trigger(func() { d.runSearch(query) })
	}
}

// menuState must be called with d.mu held.
func (d *Detector) menuState(filter string, origin int) MenuState {
	state := MenuState{Open: true, Filter: filter, Origin: origin}
	if d.locator != nil {
		if x, y, ok := d.locator.CoordsAt(origin); ok {
			state.AnchorX, state.AnchorY = x, y
		}
	}
	return state
}

func (d *Detector) runSearch(query string) {
	results, err := d.searcher.Search(context.Background(), query, d.limit)
	if err != nil {
		d.logger.Warn("wikilink search failed",
			logging.FieldQuery, query,
			logging.FieldError, err,
		)
		results = nil
	}
	if len(results) > d.limit {
		results = results[:d.limit]
	}

	d.mu.Lock()
	if !d.wiki.Open || d.wiki.Filter != query {
		d.mu.Unlock()
		d.logger.Debug("dropping stale wikilink results", logging.FieldQuery, query)
		return
	}
	d.wiki.Results = results
	d.wiki.Highlight = 0
	d.wiki.Loading = false
	d.mu.Unlock()

	d.notify()
}

// HandleKey routes a navigation key to the open menu, slash first. It
// reports whether the key was consumed.
func (d *Detector) HandleKey(key Key) bool {
	if key == KeyOther {
		return false
	}

	d.mu.Lock()
	switch {
	case d.slash.Open:
		return d.slashKey(key)
	case d.wiki.Open:
		return d.wikiKey(key)
	default:
		d.mu.Unlock()
		return false
	}
}

// slashKey is entered with d.mu held and releases it.
func (d *Detector) slashKey(key Key) bool {
	count := len(d.slash.Items)

	switch key {
	case KeyUp, KeyDown:
		d.slash.Highlight = step(d.slash.Highlight, count, key)
		d.mu.Unlock()
		d.notify()
		return true
	case KeyEscape:
		d.slash = SlashMenu{}
		d.mu.Unlock()
		d.notify()
		return true
	case KeyEnter:
		if count == 0 {
			d.slash = SlashMenu{}
			d.mu.Unlock()
			d.notify()
			return false
		}
		cmd := d.slash.Items[clampIndex(d.slash.Highlight, count)]
		d.mu.Unlock()
		if err := d.SelectCommand(cmd); err != nil {
			d.logger.Warn("slash command failed", "command", cmd.ID, logging.FieldError, err)
		}
		return true
	default:
		d.mu.Unlock()
		return false
	}
}

// wikiKey is entered with d.mu held and releases it.
func (d *Detector) wikiKey(key Key) bool {
	count := len(d.wiki.Results)

	switch key {
	case KeyUp, KeyDown:
		d.wiki.Highlight = step(d.wiki.Highlight, count, key)
		d.mu.Unlock()
		d.notify()
		return true
	case KeyEscape:
		d.wiki = WikilinkMenu{}
		d.mu.Unlock()
		d.search.Cancel()
		d.notify()
		return true
	case KeyEnter:
		if count == 0 {
			d.mu.Unlock()
			return false
		}
		target := d.wiki.Results[clampIndex(d.wiki.Highlight, count)]
		d.mu.Unlock()
		if err := d.SelectWikilink(target); err != nil {
			d.logger.Warn("wikilink insert failed", logging.FieldDocument, target.ID, logging.FieldError, err)
		}
		return true
	default:
		d.mu.Unlock()
		return false
	}
}

// SelectCommand removes the slash trigger text and applies cmd.
func (d *Detector) SelectCommand(cmd Command) error {
	text := d.ctrl.Content()
	cursor := d.ctrl.Selection().Head

	if _, origin, ok := DetectSlash(text, cursor); ok {
		if err := d.ctrl.Replace(origin, cursor, ""); err != nil {
			return err
		}
	}

	var err error
	if cmd.Apply != nil {
		err = cmd.Apply(d.ctrl)
	}

	d.CloseSlash()
	return err
}

// SelectWikilink replaces "[[query" and an immediately following "]]" with a
// markdown link to target. The cursor lands after the link.
func (d *Detector) SelectWikilink(target LinkTarget) error {
	text := d.ctrl.Content()
	cursor := d.ctrl.Selection().Head

	_, origin, ok := DetectWikilink(text, cursor)
	if !ok {
		d.CloseWikilink()
		return nil
	}

	end := cursor
	if len(text) >= cursor+2 && text[cursor:cursor+2] == "]]" {
		end += 2
	}

	if err := d.ctrl.Replace(origin, end, WikilinkMarkdown(target)); err != nil {
		return err
	}

	d.CloseWikilink()
	return nil
}

// CloseSlash hides the slash menu.
func (d *Detector) CloseSlash() {
	d.mu.Lock()
	d.slash = SlashMenu{}
	d.mu.Unlock()
	d.notify()
}

// CloseWikilink hides the wikilink menu and drops any pending search.
func (d *Detector) CloseWikilink() {
	d.mu.Lock()
	d.wiki = WikilinkMenu{}
	d.mu.Unlock()
	d.search.Cancel()
	d.notify()
}

func (d *Detector) notify() {
	if d.onUpdate != nil {
		d.onUpdate()
	}
}

func step(current, count int, key Key) int {
	if count == 0 {
		return 0
	}
	if key == KeyUp {
		return (current - 1 + count) % count
	}
	return (current + 1) % count
}

func clampIndex(idx, count int) int {
	if idx < 0 || idx >= count {
		return 0
	}
	return idx
}
