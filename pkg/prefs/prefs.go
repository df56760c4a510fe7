// Package prefs stores per-user editor preferences.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdnote/pkg/fsutil"
)

// Preferences are the user-adjustable editor settings.
type Preferences struct {
	// ScrollSync mirrors scrolling between source and preview.
	ScrollSync bool `yaml:"scroll_sync"`

	// ShowPreview shows the rendered preview next to the source.
	ShowPreview bool `yaml:"show_preview"`

	// ShowTOC shows the outline panel.
	ShowTOC bool `yaml:"show_toc"`

	// HighlightStyle is the chroma style for code blocks.
	HighlightStyle string `yaml:"highlight_style"`

	// EditorTheme names the source editor theme.
	EditorTheme string `yaml:"editor_theme"`
}

// Default returns the preferences of a new user.
func Default() Preferences {
	return Preferences{
		ScrollSync:     true,
		ShowPreview:    true,
		ShowTOC:        false,
		HighlightStyle: "github",
		EditorTheme:    "light",
	}
}

// Store loads and saves preferences.
type Store interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, prefs Preferences) error
}

// MemoryStore keeps preferences in memory.
type MemoryStore struct {
	mu    sync.Mutex
	prefs Preferences
}

// NewMemoryStore creates a MemoryStore holding the defaults.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: Default()}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs
	return nil
}

// FileStore keeps preferences in a YAML file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store. A missing file yields the defaults, and keys absent
// from the file keep their default values.
func (s *FileStore) Load(ctx context.Context) (Preferences, error) {
	prefs := Default()
	if err := ctx.Err(); err != nil {
		return prefs, fmt.Errorf("load preferences: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("load preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Default(), fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	return prefs, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, prefs Preferences) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	if err := fsutil.WriteAtomic(ctx, s.path, data, 0o644); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
