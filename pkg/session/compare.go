package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/mdnote/pkg/linediff"
)

// Comparison is a proposed replacement of the buffer content.
type Comparison struct {
	Before string
	After  string
	Rows   []linediff.Row
}

// HasChanges reports whether applying the comparison would change anything.
func (c *Comparison) HasChanges() bool {
	return linediff.HasChanges(c.Rows)
}

func newComparison(before, after string) *Comparison {
	return &Comparison{Before: before, After: after, Rows: linediff.Text(before, after)}
}

// Polish asks the AI service to edit the content and returns the proposal.
func (s *Session) Polish(ctx context.Context) (*Comparison, error) {
	before := s.ctrl.Snapshot()
	if strings.TrimSpace(before) == "" {
		verr := &ValidationError{Field: "content", Reason: "nothing to polish"}
		s.cfg.notifier.Notify(LevelError, verr.Error())
		return nil, verr
	}

	after, err := s.backend.Polish(ctx, before)
	if err != nil {
		s.notifyError("Polish failed", err)
		return nil, fmt.Errorf("polish: %w", err)
	}
	return newComparison(before, after), nil
}

// ApplyPolish replaces the buffer with the polished text.
func (s *Session) ApplyPolish(c *Comparison) error {
	if err := s.ctrl.SetContent(c.After); err != nil {
		return fmt.Errorf("apply polish: %w", err)
	}
	return nil
}

// CompareVersion diffs the current content against a saved version.
func (s *Session) CompareVersion(ctx context.Context, versionID string) (*Comparison, error) {
	id, err := s.documentID()
	if err != nil {
		return nil, err
	}

	version, err := s.backend.GetVersion(ctx, id, versionID)
	if err != nil {
		s.notifyError("Failed to load version", err)
		return nil, fmt.Errorf("load version %s: %w", versionID, err)
	}
	return newComparison(s.ctrl.Snapshot(), version.Content), nil
}

// RevertTo replaces the buffer with a compared version. The change is
// saved by the next save or autosave.
func (s *Session) RevertTo(c *Comparison) error {
	if err := s.ctrl.SetContent(c.After); err != nil {
		return fmt.Errorf("revert: %w", err)
	}
	s.cfg.notifier.Notify(LevelSuccess, "Version restored")
	return nil
}

// Generate asks the AI service to write text for prompt and inserts it at
// the cursor.
func (s *Session) Generate(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		verr := &ValidationError{Field: "prompt", Reason: "prompt is empty"}
		s.cfg.notifier.Notify(LevelError, verr.Error())
		return verr
	}

	text, err := s.backend.Generate(ctx, prompt)
	if err != nil {
		s.notifyError("Generate failed", err)
		return fmt.Errorf("generate: %w", err)
	}
	if err := s.ctrl.InsertAtCursor(text); err != nil {
		return fmt.Errorf("insert generated text: %w", err)
	}
	return nil
}
