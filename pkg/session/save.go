package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/api"
	"github.com/yaklabco/mdnote/pkg/markdown"
)

// DeriveTitle returns the text of the first heading, or else the first
// non-empty line, cut to MaxTitleRunes. It returns "" for blank content.
func DeriveTitle(content string) string {
	if headings := markdown.ExtractHeadings(content); len(headings) > 0 {
		if title := strings.TrimSpace(headings[0].Text); title != "" {
			return truncateRunes(title, MaxTitleRunes)
		}
	}
	for _, line := range strings.Split(content, "\n") {
		if title := strings.TrimSpace(line); title != "" {
			return truncateRunes(title, MaxTitleRunes)
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// Save stores the current content. A document with no derivable title is
// rejected without a network call.
func (s *Session) Save(ctx context.Context) error {
	if _, err := s.documentID(); err != nil {
		return err
	}

	if err := s.saveSnapshot(ctx); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.cfg.notifier.Notify(LevelError, "Cannot save: "+verr.Reason)
		} else {
			s.notifyError("Save failed", err)
		}
		return err
	}

	s.cfg.notifier.Notify(LevelSuccess, "Saved")
	return nil
}

// saveSnapshot persists the current snapshot and marks the session clean
// when nothing changed during the request.
func (s *Session) saveSnapshot(ctx context.Context) error {
	content := s.ctrl.Snapshot()
	if err := s.persist(ctx, content); err != nil {
		return err
	}

	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop != nil && s.ctrl.Snapshot() == content {
		loop.MarkClean()
	}
	return nil
}

// persist sends content and the current tags to the server, then drops the
// local draft unless the buffer moved on during the request.
func (s *Session) persist(ctx context.Context, content string) error {
	title := DeriveTitle(content)
	if title == "" {
		return &ValidationError{Field: "title", Reason: "add a heading or a line of text first"}
	}

	s.mu.Lock()
	id := s.meta.ID
	tagIDs := make([]string, 0, len(s.meta.Tags))
	for _, tag := range s.meta.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	writer := s.writer
	s.mu.Unlock()

	if id == "" {
		return ErrNoDocument
	}

	doc, err := s.backend.SaveDocument(ctx, id, api.SaveRequest{
		Title:   title,
		Content: content,
		TagIDs:  tagIDs,
	})
	if err != nil {
		return fmt.Errorf("save document %s: %w", id, err)
	}

	s.mu.Lock()
	if s.meta.ID == id {
		s.meta.Title = title
		s.meta.Restored = false
		if doc != nil && !doc.UpdatedAt.IsZero() {
			s.meta.UpdatedAt = doc.UpdatedAt
		}
	}
	s.mu.Unlock()

	// An edit made while the request was in flight keeps its draft.
	if writer != nil && s.ctrl.Snapshot() == content {
		if err := writer.Clear(ctx); err != nil {
			s.cfg.logger.Warn("draft not cleared", logging.FieldDocument, id, logging.FieldError, err)
		}
	}

	s.cfg.logger.Debug("document saved", logging.FieldDocument, id, logging.FieldTitle, title)
	return nil
}

func (s *Session) autosave(ctx context.Context, content string) error {
	return s.persist(ctx, content)
}

// autosaveFailed reports background save failures. Untitled documents are
// skipped quietly until the user types something.
func (s *Session) autosaveFailed(err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return
	}
	s.cfg.notifier.Notify(LevelError, "Autosave failed: "+errorMessage(err))
}
