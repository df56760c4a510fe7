package configloader

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yaklabco/mdnote/pkg/config"
	"github.com/yaklabco/mdnote/pkg/sandbox"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "editor.max_tags").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) errorf(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	validateAPI(cfg, result)

	durations := []struct {
		field string
		value time.Duration
	}{
		{"api.timeout", cfg.API.Timeout},
		{"editor.autosave_interval", cfg.Editor.AutosaveInterval},
		{"editor.draft_delay", cfg.Editor.DraftDelay},
		{"editor.preview_delay", cfg.Editor.PreviewDelay},
		{"sandbox.timeout", cfg.Sandbox.Timeout},
		{"diagram.timeout", cfg.Diagram.Timeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			result.errorf(d.field, d.value, "duration must not be negative")
		}
	}

	if cfg.Editor.MaxTags < 1 {
		result.errorf("editor.max_tags", cfg.Editor.MaxTags, "must be at least 1")
	}
	if cfg.Render.DiagramConcurrency < 0 {
		result.errorf("render.diagram_concurrency", cfg.Render.DiagramConcurrency, "must be >= 0 (0 means unbounded)")
	}

	if style := cfg.Render.HighlightStyle; style != "" {
		if _, ok := styles.Registry[style]; !ok {
			result.warnf("render.highlight_style", style, "unknown style %q; the default style will be used", style)
		}
	}

	if cfg.Drafts.Store != "" && !cfg.Drafts.Store.IsValid() {
		result.errorf("drafts.store", cfg.Drafts.Store,
			"invalid store %q; must be one of: file, sqlite, memory", cfg.Drafts.Store)
	}

	if cfg.Diagram.Command == "" {
		result.warnf("diagram.command", "", "no mermaid command; diagrams are left unrendered")
	}

	validateSandbox(cfg, result)

	return result
}

func validateAPI(cfg *config.Config, result *ValidationResult) {
	if cfg.API.BaseURL == "" {
		return
	}

	parsed, err := url.Parse(cfg.API.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		result.errorf("api.base_url", cfg.API.BaseURL, "must be an absolute http or https URL")
	}
}

func validateSandbox(cfg *config.Config, result *ValidationResult) {
	for i, lang := range cfg.Sandbox.Languages {
		field := fmt.Sprintf("sandbox.languages[%d]", i)
		if lang.Name == "" {
			result.errorf(field+".name", "", "name is required")
		}
		if len(lang.Command) == 0 {
			result.errorf(field+".command", nil, "command is required")
		}
		if lang.FileName == "" {
			result.errorf(field+".file_name", "", "file_name is required")
		}
	}

	registry := SandboxRegistry(cfg)
	for _, name := range cfg.Render.RunnableLanguages {
		if _, ok := registry.Resolve(name); !ok {
			result.warnf("render.runnable_languages", name, "no sandbox language %q; its blocks cannot run", name)
		}
	}
}

// SandboxRegistry returns the default sandbox languages plus those in cfg.
func SandboxRegistry(cfg *config.Config) *sandbox.Registry {
	registry := sandbox.NewRegistry()
	for _, lang := range cfg.Sandbox.Languages {
		if lang.Name == "" || len(lang.Command) == 0 {
			continue
		}
		registry.Register(sandbox.Language{
			Name:     lang.Name,
			Aliases:  lang.Aliases,
			FileName: lang.FileName,
			Command:  lang.Command,
		})
	}
	return registry
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
