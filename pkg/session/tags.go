package session

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/api"
	"github.com/yaklabco/mdnote/pkg/editor"
)

// ValidateTagName accepts 1 to MaxTagRunes ASCII letters, digits or Han
// characters.
func ValidateTagName(name string) error {
	if name == "" {
		return &ValidationError{Field: "tag", Reason: "name is empty"}
	}
	if utf8.RuneCountInString(name) > MaxTagRunes {
		return &ValidationError{Field: "tag", Reason: fmt.Sprintf("name is longer than %d characters", MaxTagRunes)}
	}
	for _, r := range name {
		ascii := r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
		if !ascii && !unicode.Is(unicode.Han, r) {
			return &ValidationError{Field: "tag", Reason: "use only letters, digits and Chinese characters"}
		}
	}
	return nil
}

// ToggleStar flips the starred flag at once and reverts it if the server
// call fails.
func (s *Session) ToggleStar(ctx context.Context) error {
	return s.toggle(ctx, "star", func(m *Meta) *bool { return &m.Starred }, s.backend.ToggleStar)
}

// TogglePin flips the pinned flag at once and reverts it if the server call
// fails.
func (s *Session) TogglePin(ctx context.Context) error {
	return s.toggle(ctx, "pin", func(m *Meta) *bool { return &m.Pinned }, s.backend.TogglePin)
}

func (s *Session) toggle(
	ctx context.Context,
	name string,
	field func(*Meta) *bool,
	call func(context.Context, string) (bool, error),
) error {
	s.mu.Lock()
	id := s.meta.ID
	if id == "" {
		s.mu.Unlock()
		return ErrNoDocument
	}
	prev := *field(&s.meta)
	*field(&s.meta) = !prev
	s.mu.Unlock()

	got, err := call(ctx, id)

	s.mu.Lock()
	if s.meta.ID == id {
		if err != nil {
			*field(&s.meta) = prev
		} else {
			*field(&s.meta) = got
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.notifyError("Failed to update "+name, err)
		return fmt.Errorf("toggle %s: %w", name, err)
	}
	return nil
}

// AddTag attaches a tag by name, reusing an existing tag with the same name
// or creating one. The name is checked and the quota enforced before any
// network call.
func (s *Session) AddTag(ctx context.Context, name string) (*api.Tag, error) {
	name = strings.TrimSpace(name)
	if err := ValidateTagName(name); err != nil {
		s.cfg.notifier.Notify(LevelError, err.Error())
		return nil, err
	}

	s.mu.Lock()
	id := s.meta.ID
	if id == "" {
		s.mu.Unlock()
		return nil, ErrNoDocument
	}
	for _, tag := range s.meta.Tags {
		if strings.EqualFold(tag.Name, name) {
			s.mu.Unlock()
			return &tag, nil
		}
	}
	if len(s.meta.Tags) >= s.cfg.maxTags {
		s.mu.Unlock()
		verr := &ValidationError{Field: "tag", Reason: fmt.Sprintf("a document can have at most %d tags", s.cfg.maxTags)}
		s.cfg.notifier.Notify(LevelError, verr.Error())
		return nil, verr
	}
	s.mu.Unlock()

	tag, err := s.findOrCreateTag(ctx, name)
	if err != nil {
		s.notifyError("Failed to add tag", err)
		return nil, err
	}

	s.mu.Lock()
	if s.meta.ID != id || slices.ContainsFunc(s.meta.Tags, func(t api.Tag) bool { return t.ID == tag.ID }) {
		s.mu.Unlock()
		return tag, nil
	}
	s.meta.Tags = append(slices.Clone(s.meta.Tags), *tag)
	s.mu.Unlock()

	if err := s.saveSnapshot(ctx); err != nil {
		s.mu.Lock()
		if s.meta.ID == id {
			s.meta.Tags = slices.DeleteFunc(slices.Clone(s.meta.Tags), func(t api.Tag) bool { return t.ID == tag.ID })
		}
		s.mu.Unlock()
		s.notifyError("Failed to add tag", err)
		return nil, err
	}
	return tag, nil
}

func (s *Session) findOrCreateTag(ctx context.Context, name string) (*api.Tag, error) {
	matches, err := s.backend.SearchTags(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	for _, tag := range matches {
		if strings.EqualFold(tag.Name, name) {
			return &tag, nil
		}
	}

	tag, err := s.backend.CreateTag(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

// RemoveTag detaches a tag at once and puts it back if the save fails.
func (s *Session) RemoveTag(ctx context.Context, tagID string) error {
	s.mu.Lock()
	id := s.meta.ID
	idx := slices.IndexFunc(s.meta.Tags, func(t api.Tag) bool { return t.ID == tagID })
	if id == "" || idx < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.meta.Tags[idx]
	s.meta.Tags = slices.Delete(slices.Clone(s.meta.Tags), idx, idx+1)
	s.mu.Unlock()

	if err := s.saveSnapshot(ctx); err != nil {
		s.mu.Lock()
		if s.meta.ID == id && !slices.ContainsFunc(s.meta.Tags, func(t api.Tag) bool { return t.ID == tagID }) {
			s.meta.Tags = slices.Insert(slices.Clone(s.meta.Tags), min(idx, len(s.meta.Tags)), removed)
		}
		s.mu.Unlock()
		s.notifyError("Failed to remove tag", err)
		return err
	}
	return nil
}

// Upload inserts a placeholder at the cursor, uploads the file and swaps
// the placeholder for an embed. On failure the placeholder is removed.
func (s *Session) Upload(ctx context.Context, name string, content io.Reader) error {
	token, err := s.uploads.Begin(filepath.Base(name))
	if err != nil {
		return fmt.Errorf("insert upload placeholder: %w", err)
	}

	res, err := s.backend.Upload(ctx, name, content)
	if err != nil {
		if _, failErr := s.uploads.Fail(token); failErr != nil {
			s.cfg.logger.Warn("placeholder not removed", logging.FieldError, failErr)
		}
		s.notifyError("Upload failed", err)
		return fmt.Errorf("upload %s: %w", name, err)
	}

	found, err := s.uploads.Complete(token, editor.UploadResult{
		URL:         res.URL,
		Name:        res.Name,
		ContentType: res.ContentType,
	})
	if err != nil {
		return fmt.Errorf("replace upload placeholder: %w", err)
	}
	if !found {
		s.cfg.logger.Debug("upload placeholder was removed before completion", logging.FieldPath, name)
	}
	return nil
}
