// Package config defines the configuration types for mdnote.
// These types are plain data; loading and merging live in internal/configloader.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// DraftStoreKind selects where local drafts are kept.
type DraftStoreKind string

const (
	DraftStoreFile   DraftStoreKind = "file"
	DraftStoreSQLite DraftStoreKind = "sqlite"
	DraftStoreMemory DraftStoreKind = "memory"
)

// IsValid reports whether k names a known store.
func (k DraftStoreKind) IsValid() bool {
	switch k {
	case DraftStoreFile, DraftStoreSQLite, DraftStoreMemory:
		return true
	default:
		return false
	}
}

// APIConfig points at the document service.
type APIConfig struct {
	// BaseURL is the server root, e.g. "https://notes.example.com".
	BaseURL string `yaml:"base_url"`

	// Token is sent as a bearer token. Prefer MDNOTE_API_TOKEN over storing
	// it in a file.
	Token string `yaml:"token,omitempty"`

	Timeout time.Duration `yaml:"timeout"`
}

// EditorConfig holds the editor timing windows.
type EditorConfig struct {
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	DraftDelay       time.Duration `yaml:"draft_delay"`
	PreviewDelay     time.Duration `yaml:"preview_delay"`
	MaxTags          int           `yaml:"max_tags"`
}

// RenderConfig controls the preview renderer.
type RenderConfig struct {
	// HighlightStyle is a chroma style name.
	HighlightStyle string `yaml:"highlight_style"`

	// RunnableLanguages are the fence languages that become sandboxes.
	RunnableLanguages []string `yaml:"runnable_languages"`

	// DiagramConcurrency bounds parallel diagram renders.
	DiagramConcurrency int `yaml:"diagram_concurrency"`
}

// LanguageConfig adds or overrides a sandbox language.
type LanguageConfig struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases,omitempty"`
	FileName string   `yaml:"file_name"`
	Command  []string `yaml:"command"`
}

// SandboxConfig controls local code execution.
type SandboxConfig struct {
	Timeout   time.Duration    `yaml:"timeout"`
	Languages []LanguageConfig `yaml:"languages,omitempty"`
}

// DiagramConfig controls mermaid rendering.
type DiagramConfig struct {
	// Command is the mermaid-cli executable.
	Command string        `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

// DraftsConfig controls local draft storage.
type DraftsConfig struct {
	Store DraftStoreKind `yaml:"store"`

	// Path is a directory for the file store or a database file for sqlite.
	// Empty means a location under the user data directory.
	Path string `yaml:"path,omitempty"`
}

// Config is the root configuration structure for mdnote.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Editor  EditorConfig  `yaml:"editor"`
	Render  RenderConfig  `yaml:"render"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Diagram DiagramConfig `yaml:"diagram"`
	Drafts  DraftsConfig  `yaml:"drafts"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Editor: EditorConfig{
			AutosaveInterval: 10 * time.Second,
			DraftDelay:       time.Second,
			PreviewDelay:     300 * time.Millisecond,
			MaxTags:          10,
		},
		Render: RenderConfig{
			HighlightStyle:     "github",
			RunnableLanguages:  []string{"go", "javascript", "python"},
			DiagramConcurrency: 4,
		},
		Sandbox: SandboxConfig{
			Timeout: 10 * time.Second,
		},
		Diagram: DiagramConfig{
			Command: "mmdc",
			Timeout: 15 * time.Second,
		},
		Drafts: DraftsConfig{
			Store: DraftStoreFile,
		},
	}
}

// DraftsPath returns the configured drafts location, or the default under
// $XDG_DATA_HOME (or ~/.local/share).
func (c *Config) DraftsPath() string {
	if c.Drafts.Path != "" {
		return c.Drafts.Path
	}

	name := "drafts"
	if c.Drafts.Store == DraftStoreSQLite {
		name = "drafts.db"
	}
	return filepath.Join(DataDir(), name)
}

// DataDir returns the mdnote data directory.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "mdnote")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mdnote")
}
