package autosave

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/clock"
	"github.com/yaklabco/mdnote/pkg/editor"
	"github.com/yaklabco/mdnote/pkg/textbuf"
)

// Saver persists document content.
type Saver interface {
	Save(ctx context.Context, content string) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, content string) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, content string) error {
	return f(ctx, content)
}

// Loop saves the controller's content on a fixed interval whenever it has
// changed since the last successful save.
type Loop struct {
	ctrl  *editor.Controller
	saver Saver
	opts  options

	mu          sync.Mutex
	dirty       bool
	gen         uint64
	saving      bool
	running     bool
	ctx         context.Context //nolint:containedctx // owned by Start/Stop
	timer       clock.Timer
	unsubscribe func()
}

// NewLoop creates a Loop for ctrl.
func NewLoop(ctrl *editor.Controller, saver Saver, opts ...Option) *Loop {
	return &Loop{
		ctrl:  ctrl,
		saver: saver,
		opts:  newOptions(opts),
	}
}

// Start begins watching the controller and ticking. Ticks stop when ctx is
// done or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true
	l.ctx = ctx
	l.unsubscribe = l.ctrl.Subscribe(func(change textbuf.Change) {
		if change.DocChanged {
			l.MarkDirty()
		}
	})
	l.scheduleLocked()
}

// Stop halts ticking and stops watching the controller.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
}

// Dirty reports whether there are unsaved changes.
func (l *Loop) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// MarkDirty records an unsaved change.
func (l *Loop) MarkDirty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty = true
	l.gen++
}

// MarkClean records that the current content is saved.
func (l *Loop) MarkClean() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty = false
}

// SaveIfDirty saves the current snapshot when there are unsaved changes and
// no save is already running. It reports whether a save happened. On failure
// the loop stays dirty so the next tick retries.
func (l *Loop) SaveIfDirty(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if !l.dirty || l.saving {
		l.mu.Unlock()
		return false, nil
	}
	l.saving = true
	gen := l.gen
	l.mu.Unlock()

	content := l.ctrl.Snapshot()
	err := l.saver.Save(ctx, content)

	l.mu.Lock()
	l.saving = false
	// Edits made while the save was in flight keep the loop dirty.
	if err == nil && gen == l.gen {
		l.dirty = false
	}
	l.mu.Unlock()

	if err != nil {
		l.logger().Warn("autosave failed", logging.FieldError, err)
		if l.opts.onError != nil {
			l.opts.onError(err)
		}
		return false, fmt.Errorf("autosave: %w", err)
	}

	l.logger().Debug("autosaved", logging.FieldBytes, len(content))
	if l.opts.onSaved != nil {
		l.opts.onSaved(content)
	}
	return true, nil
}

func (l *Loop) logger() *log.Logger {
	return l.opts.logger
}

func (l *Loop) scheduleLocked() {
	l.timer = l.opts.clock.AfterFunc(l.opts.interval, l.tick)
}

func (l *Loop) tick() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	ctx := l.ctx
	l.mu.Unlock()

	if ctx.Err() != nil {
		l.Stop()
		return
	}

	_, _ = l.SaveIfDirty(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		l.scheduleLocked()
	}
}
