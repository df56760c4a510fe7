package session

import (
	"context"
	"fmt"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/markdown"
	"github.com/yaklabco/mdnote/pkg/prefs"
	"github.com/yaklabco/mdnote/pkg/render"
)

// Preview returns the most recent render of the buffer.
func (s *Session) Preview() Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// RefreshPreview renders the current snapshot now, dropping any pending
// debounced refresh. A render that finishes after a newer one is discarded.
func (s *Session) RefreshPreview(ctx context.Context) error {
	s.preview.Cancel()

	content := s.ctrl.Snapshot()

	s.mu.Lock()
	s.renderSeq++
	seq := s.renderSeq
	projector := s.projector
	s.mu.Unlock()

	doc, err := projector.Render(ctx, content)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	if s.cfg.diagrams != nil {
		if err := doc.ResolveDiagrams(ctx); err != nil {
			s.cfg.logger.Debug("diagrams not resolved", logging.FieldError, err)
		}
	}

	preview := Preview{
		Result:   doc.Result,
		Stats:    markdown.Stats(content),
		Document: doc,
	}

	s.mu.Lock()
	if seq < s.latestSeq {
		s.mu.Unlock()
		return nil
	}
	s.latestSeq = seq
	s.latest = preview
	s.mu.Unlock()

	if s.cfg.onPreview != nil {
		s.cfg.onPreview(preview)
	}
	return nil
}

func (s *Session) buildProjector(style string) *render.Projector {
	opts := []render.Option{
		render.WithHighlightStyle(style),
		render.WithLogger(s.cfg.logger),
	}
	if s.cfg.diagrams != nil {
		opts = append(opts, render.WithDiagrams(s.cfg.diagrams))
	}
	if len(s.cfg.runnable) > 0 {
		opts = append(opts, render.WithRunnableLanguages(s.cfg.runnable...))
	}
	return render.NewProjector(opts...)
}

// Preferences returns the active preferences.
func (s *Session) Preferences() prefs.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// UpdatePreferences edits, stores and applies the preferences.
func (s *Session) UpdatePreferences(ctx context.Context, edit func(*prefs.Preferences)) error {
	updated := s.Preferences()
	edit(&updated)

	if err := s.cfg.prefs.Save(ctx, updated); err != nil {
		s.notifyError("Failed to save preferences", err)
		return fmt.Errorf("save preferences: %w", err)
	}
	s.applyPrefs(updated)
	return nil
}

func (s *Session) loadPrefs(ctx context.Context) {
	loaded, err := s.cfg.prefs.Load(ctx)
	if err != nil {
		s.cfg.logger.Warn("preferences unavailable", logging.FieldError, err)
		loaded = prefs.Default()
	}
	s.applyPrefs(loaded)
}

func (s *Session) applyPrefs(p prefs.Preferences) {
	s.mu.Lock()
	if p.HighlightStyle != s.prefs.HighlightStyle {
		s.projector = s.buildProjector(p.HighlightStyle)
	}
	s.prefs = p
	s.mu.Unlock()

	if s.scroll != nil {
		s.scroll.SetEnabled(p.ScrollSync)
	}
}
