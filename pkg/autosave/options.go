package autosave

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/clock"
)

const (
	// DefaultInterval is how often the Loop checks for unsaved changes.
	DefaultInterval = 10 * time.Second

	// DefaultDraftDelay is the quiet period before a draft is written.
	DefaultDraftDelay = time.Second
)

type options struct {
	clock    clock.Clock
	logger   *log.Logger
	interval time.Duration
	delay    time.Duration
	onSaved  func(content string)
	onError  func(err error)
}

// Option configures a Loop or DraftWriter.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		clock:    clock.DefaultClock{},
		logger:   logging.Default(),
		interval: DefaultInterval,
		delay:    DefaultDraftDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the clock driving ticks and debounces.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		if clk != nil {
			o.clock = clk
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInterval sets the Loop tick interval.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithDraftDelay sets the DraftWriter debounce window.
func WithDraftDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithOnSaved registers a callback run after each successful save.
func WithOnSaved(fn func(content string)) Option {
	return func(o *options) {
		o.onSaved = fn
	}
}

// WithOnError registers a callback run when a save or draft write fails.
func WithOnError(fn func(err error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}
