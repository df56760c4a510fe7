package session

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/autosave"
	"github.com/yaklabco/mdnote/pkg/clock"
	"github.com/yaklabco/mdnote/pkg/diagram"
	"github.com/yaklabco/mdnote/pkg/prefs"
	"github.com/yaklabco/mdnote/pkg/scrollsync"
	"github.com/yaklabco/mdnote/pkg/textbuf"
	"github.com/yaklabco/mdnote/pkg/trigger"
)

const (
	// DefaultPreviewDelay is the quiet period before the preview re-renders.
	DefaultPreviewDelay = 300 * time.Millisecond

	// DefaultMaxTags is the most tags a document may carry.
	DefaultMaxTags = 10

	// MaxTagRunes is the longest allowed tag name.
	MaxTagRunes = 16

	// MaxTitleRunes caps a derived title.
	MaxTitleRunes = 100
)

type config struct {
	clock            clock.Clock
	logger           *log.Logger
	notifier         Notifier
	drafts           autosave.DraftStore
	prefs            prefs.Store
	diagrams         *diagram.Service
	runnable         []string
	buffer           *textbuf.Buffer
	editorView       scrollsync.Viewport
	previewView      scrollsync.Viewport
	locator          trigger.CaretLocator
	autosaveInterval time.Duration
	draftDelay       time.Duration
	previewDelay     time.Duration
	maxTags          int
	onPreview        func(Preview)
}

// Option configures a Session.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		clock:            clock.DefaultClock{},
		logger:           logging.Default(),
		notifier:         discardNotifier{},
		drafts:           autosave.NewMemoryStore(),
		prefs:            prefs.NewMemoryStore(),
		autosaveInterval: autosave.DefaultInterval,
		draftDelay:       autosave.DefaultDraftDelay,
		previewDelay:     DefaultPreviewDelay,
		maxTags:          DefaultMaxTags,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithClock sets the clock behind every timer of the session.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets where user-facing messages go.
func WithNotifier(n Notifier) Option {
	return func(c *config) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithDraftStore sets the local draft store.
func WithDraftStore(store autosave.DraftStore) Option {
	return func(c *config) {
		if store != nil {
			c.drafts = store
		}
	}
}

// WithPrefs sets the preference store.
func WithPrefs(store prefs.Store) Option {
	return func(c *config) {
		if store != nil {
			c.prefs = store
		}
	}
}

// WithDiagrams enables mermaid rendering in the preview.
func WithDiagrams(svc *diagram.Service) Option {
	return func(c *config) {
		c.diagrams = svc
	}
}

// WithRunnableLanguages sets the fence tags that render as sandboxes.
func WithRunnableLanguages(langs ...string) Option {
	return func(c *config) {
		c.runnable = langs
	}
}

// WithBuffer attaches a host-owned buffer instead of a private one.
func WithBuffer(buf *textbuf.Buffer) Option {
	return func(c *config) {
		c.buffer = buf
	}
}

// WithViewports enables scroll sync between the two viewports.
func WithViewports(editorView, previewView scrollsync.Viewport) Option {
	return func(c *config) {
		c.editorView = editorView
		c.previewView = previewView
	}
}

// WithCaretLocator positions trigger menus.
func WithCaretLocator(l trigger.CaretLocator) Option {
	return func(c *config) {
		c.locator = l
	}
}

// WithAutosaveInterval sets the autosave tick.
func WithAutosaveInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.autosaveInterval = d
		}
	}
}

// WithDraftDelay sets the draft debounce window.
func WithDraftDelay(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.draftDelay = d
		}
	}
}

// WithPreviewDelay sets the preview debounce window.
func WithPreviewDelay(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.previewDelay = d
		}
	}
}

// WithMaxTags sets the tag quota.
func WithMaxTags(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxTags = n
		}
	}
}

// WithOnPreview registers a callback run after each preview refresh.
func WithOnPreview(fn func(Preview)) Option {
	return func(c *config) {
		c.onPreview = fn
	}
}
