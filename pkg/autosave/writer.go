package autosave

import (
	"context"
	"fmt"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/debounce"
	"github.com/yaklabco/mdnote/pkg/editor"
	"github.com/yaklabco/mdnote/pkg/textbuf"
)

// DraftWriter writes debounced snapshots of a document to a DraftStore.
type DraftWriter struct {
	store    DraftStore
	docID    string
	opts     options
	debounce *debounce.Debouncer
}

// NewDraftWriter creates a DraftWriter for docID.
func NewDraftWriter(store DraftStore, docID string, opts ...Option) *DraftWriter {
	o := newOptions(opts)
	return &DraftWriter{
		store:    store,
		docID:    docID,
		opts:     o,
		debounce: debounce.New(o.clock, o.delay),
	}
}

// Watch snapshots every document change of ctrl until the returned function
// is called.
func (w *DraftWriter) Watch(ctx context.Context, ctrl *editor.Controller) func() {
	unsubscribe := ctrl.Subscribe(func(change textbuf.Change) {
		if change.DocChanged {
			w.Snapshot(ctx, change.Text)
		}
	})
	return func() {
		unsubscribe()
		w.debounce.Cancel()
	}
}

// Snapshot schedules content to be written once edits pause. The timestamp
// is taken when the write happens.
func (w *DraftWriter) Snapshot(ctx context.Context, content string) {
	w.debounce.Trigger(func() {
		if err := w.write(ctx, content); err != nil {
			w.opts.logger.Warn("draft write failed",
				logging.FieldDocument, w.docID,
				logging.FieldError, err,
			)
			if w.opts.onError != nil {
				w.opts.onError(err)
			}
		}
	})
}

// Pending reports whether a snapshot is waiting to be written.
func (w *DraftWriter) Pending() bool {
	return w.debounce.Pending()
}

// Flush writes a waiting snapshot immediately. It reports whether one was
// written.
func (w *DraftWriter) Flush() bool {
	return w.debounce.Flush()
}

// Clear drops any waiting snapshot and deletes the stored draft.
func (w *DraftWriter) Clear(ctx context.Context) error {
	w.debounce.Cancel()
	if err := w.store.Delete(ctx, w.docID); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

func (w *DraftWriter) write(ctx context.Context, content string) error {
	draft := Draft{Content: content, UpdatedAt: w.opts.clock.Now()}
	if err := w.store.Save(ctx, w.docID, draft); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}
