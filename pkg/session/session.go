// Package session drives one editor page: it loads a document into the
// buffer, keeps the preview current, saves on demand and on a timer, and
// applies AI, version, tag and upload actions. Collaborator failures are
// turned into notifications; only optimistic toggles roll back local state.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/api"
	"github.com/yaklabco/mdnote/pkg/autosave"
	"github.com/yaklabco/mdnote/pkg/debounce"
	"github.com/yaklabco/mdnote/pkg/editor"
	"github.com/yaklabco/mdnote/pkg/markdown"
	"github.com/yaklabco/mdnote/pkg/prefs"
	"github.com/yaklabco/mdnote/pkg/render"
	"github.com/yaklabco/mdnote/pkg/scrollsync"
	"github.com/yaklabco/mdnote/pkg/textbuf"
	"github.com/yaklabco/mdnote/pkg/trigger"
)

// ErrNoDocument is returned by document actions before Open succeeds.
var ErrNoDocument = errors.New("no document open")

// Backend is the server surface a session uses. *api.Client implements it.
type Backend interface {
	GetDocument(ctx context.Context, id string) (*api.Document, error)
	SaveDocument(ctx context.Context, id string, req api.SaveRequest) (*api.Document, error)
	GetVersion(ctx context.Context, id, versionID string) (*api.Version, error)
	SearchDocuments(ctx context.Context, query string) ([]api.DocumentSummary, error)
	ToggleStar(ctx context.Context, id string) (bool, error)
	TogglePin(ctx context.Context, id string) (bool, error)
	SearchTags(ctx context.Context, query string) ([]api.Tag, error)
	CreateTag(ctx context.Context, name string) (*api.Tag, error)
	Polish(ctx context.Context, text string) (string, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Upload(ctx context.Context, name string, content io.Reader) (*api.UploadResult, error)
}

var _ Backend = (*api.Client)(nil)

// Meta is the document state shown around the editor.
type Meta struct {
	ID        string
	Title     string
	Tags      []api.Tag
	Starred   bool
	Pinned    bool
	UpdatedAt time.Time

	// Restored is true while the content came from a local draft that has
	// not been saved yet.
	Restored bool
}

// Preview is the rendered state of the buffer.
type Preview struct {
	Result   markdown.Result
	Stats    markdown.TextStats
	Document *render.Document
}

// Session is one open editor page. It is safe for concurrent use.
type Session struct {
	backend Backend
	cfg     config

	ctrl     *editor.Controller
	detector *trigger.Detector
	scroll   *scrollsync.Synchronizer
	uploads  *editor.Uploads
	preview  *debounce.Debouncer

	stopDetector func()
	stopPreview  func()

	mu         sync.Mutex
	meta       Meta
	loop       *autosave.Loop
	writer     *autosave.DraftWriter
	stopWriter func()
	projector  *render.Projector
	prefs      prefs.Preferences
	latest     Preview
	renderSeq  uint64
	latestSeq  uint64
}

// New creates a session with an empty buffer. Call Open to load a document.
func New(backend Backend, opts ...Option) *Session {
	cfg := newConfig(opts)

	buf := cfg.buffer
	if buf == nil {
		buf = textbuf.New("")
	}
	ctrl := editor.NewController()
	ctrl.Attach(buf)

	s := &Session{
		backend: backend,
		cfg:     cfg,
		ctrl:    ctrl,
		uploads: editor.NewUploads(ctrl),
		preview: debounce.New(cfg.clock, cfg.previewDelay),
		prefs:   prefs.Default(),
	}
	s.projector = s.buildProjector(s.prefs.HighlightStyle)

	detectorOpts := []trigger.Option{
		trigger.WithSearcher(trigger.SearchFunc(s.searchLinks)),
		trigger.WithClock(cfg.clock),
		trigger.WithLogger(cfg.logger),
	}
	if cfg.locator != nil {
		detectorOpts = append(detectorOpts, trigger.WithCaretLocator(cfg.locator))
	}
	s.detector = trigger.NewDetector(ctrl, detectorOpts...)
	s.stopDetector = s.detector.Start()

	if cfg.editorView != nil && cfg.previewView != nil {
		s.scroll = scrollsync.New(cfg.editorView, cfg.previewView, scrollsync.WithClock(cfg.clock))
	}

	s.stopPreview = ctrl.Subscribe(func(change textbuf.Change) {
		if change.DocChanged {
			s.preview.Trigger(func() {
				_ = s.RefreshPreview(context.Background())
			})
		}
	})

	return s
}

// Controller returns the buffer controller.
func (s *Session) Controller() *editor.Controller {
	return s.ctrl
}

// Detector returns the slash and wikilink trigger detector.
func (s *Session) Detector() *trigger.Detector {
	return s.detector
}

// Scroll returns the scroll synchronizer, or nil when no viewports were
// given.
func (s *Session) Scroll() *scrollsync.Synchronizer {
	return s.scroll
}

// Meta returns a copy of the document state.
func (s *Session) Meta() Meta {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.meta
	meta.Tags = slices.Clone(s.meta.Tags)
	return meta
}

// Dirty reports whether the buffer has changes the server has not seen.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	return loop != nil && loop.Dirty()
}

// Open loads a document. A missing or forbidden document returns
// ErrDocumentUnavailable. A newer local draft replaces the server content
// and leaves the session dirty.
func (s *Session) Open(ctx context.Context, id string) error {
	s.closeDocument()

	doc, err := s.backend.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) || errors.Is(err, api.ErrUnauthorized) {
			s.cfg.notifier.Notify(LevelError, "Document not found or access denied")
			return fmt.Errorf("%w: %w", ErrDocumentUnavailable, err)
		}
		s.notifyError("Failed to load document", err)
		return fmt.Errorf("load document %s: %w", id, err)
	}

	s.loadPrefs(ctx)

	draft, err := s.cfg.drafts.Load(ctx, id)
	if err != nil {
		s.cfg.logger.Warn("draft unavailable", logging.FieldDocument, id, logging.FieldError, err)
		draft = nil
	}
	content, restored := autosave.Reconcile(autosave.LoadedDocument{
		Content:   doc.Content,
		UpdatedAt: doc.UpdatedAt,
	}, draft)

	s.mu.Lock()
	s.meta = metaFrom(doc)
	s.meta.Restored = restored
	s.mu.Unlock()

	if err := s.ctrl.SetContent(content); err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	s.detector.CloseSlash()
	s.detector.CloseWikilink()

	s.preview.Cancel()
	if err := s.RefreshPreview(ctx); err != nil {
		s.cfg.logger.Debug("initial preview failed", logging.FieldError, err)
	}

	background := context.WithoutCancel(ctx)
	docLogger := logging.ForDocument(s.cfg.logger, id)
	loop := autosave.NewLoop(s.ctrl, autosave.SaverFunc(s.autosave),
		autosave.WithClock(s.cfg.clock),
		autosave.WithInterval(s.cfg.autosaveInterval),
		autosave.WithLogger(docLogger),
		autosave.WithOnError(s.autosaveFailed),
	)
	writer := autosave.NewDraftWriter(s.cfg.drafts, id,
		autosave.WithClock(s.cfg.clock),
		autosave.WithDraftDelay(s.cfg.draftDelay),
		autosave.WithLogger(docLogger),
	)
	loop.Start(background)
	stopWriter := writer.Watch(background, s.ctrl)
	if restored {
		loop.MarkDirty()
	}

	s.mu.Lock()
	s.loop, s.writer, s.stopWriter = loop, writer, stopWriter
	s.mu.Unlock()

	s.cfg.logger.Info("document opened",
		logging.FieldDocument, id,
		logging.FieldRestored, restored,
		logging.FieldBytes, len(content),
	)
	if restored {
		s.cfg.notifier.Notify(LevelInfo, "Restored unsaved changes from a local draft")
	}
	return nil
}

// Close stops every timer and watcher. A waiting draft is written first.
func (s *Session) Close() {
	s.closeDocument()
	s.stopDetector()
	s.stopPreview()
	s.preview.Cancel()
	if s.scroll != nil {
		s.scroll.Stop()
	}
}

func (s *Session) closeDocument() {
	s.mu.Lock()
	loop, writer, stopWriter := s.loop, s.writer, s.stopWriter
	s.loop, s.writer, s.stopWriter = nil, nil, nil
	s.mu.Unlock()

	if loop != nil {
		loop.Stop()
	}
	if writer != nil {
		writer.Flush()
	}
	if stopWriter != nil {
		stopWriter()
	}
}

func metaFrom(doc *api.Document) Meta {
	tags := slices.Clone(doc.Tags)
	if len(tags) == 0 {
		for _, id := range doc.TagIDs {
			tags = append(tags, api.Tag{ID: id})
		}
	}
	return Meta{
		ID:        doc.ID,
		Title:     doc.Title,
		Tags:      tags,
		Starred:   doc.Starred,
		Pinned:    doc.Pinned,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (s *Session) documentID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meta.ID == "" {
		return "", ErrNoDocument
	}
	return s.meta.ID, nil
}

func (s *Session) notifyError(prefix string, err error) {
	s.cfg.logger.Warn(prefix, logging.FieldError, err)
	s.cfg.notifier.Notify(LevelError, prefix+": "+errorMessage(err))
}

// errorMessage prefers the server's message over the wrapped chain.
func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func (s *Session) searchLinks(ctx context.Context, query string, limit int) ([]trigger.LinkTarget, error) {
	docs, err := s.backend.SearchDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	self := s.Meta().ID
	out := make([]trigger.LinkTarget, 0, min(len(docs), limit))
	for _, doc := range docs {
		if doc.ID == self {
			continue
		}
		out = append(out, trigger.LinkTarget{ID: doc.ID, Title: doc.Title})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
