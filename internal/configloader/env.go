package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/mdnote/pkg/config"
)

// envVarPrefix is the prefix for all mdnote environment variables.
const envVarPrefix = "MDNOTE_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeInt
	envTypeDuration
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"API_BASE_URL":              {field: "api.base_url", typ: envTypeString, description: "Document service base URL"},
	"API_TOKEN":                 {field: "api.token", typ: envTypeString, description: "Bearer token for the document service"},
	"API_TIMEOUT":               {field: "api.timeout", typ: envTypeDuration, description: "Request timeout, e.g. 30s"},
	"EDITOR_AUTOSAVE_INTERVAL":  {field: "editor.autosave_interval", typ: envTypeDuration, description: "Autosave interval"},
	"EDITOR_DRAFT_DELAY":        {field: "editor.draft_delay", typ: envTypeDuration, description: "Quiet period before a local draft is written"},
	"EDITOR_PREVIEW_DELAY":      {field: "editor.preview_delay", typ: envTypeDuration, description: "Quiet period before the preview refreshes"},
	"EDITOR_MAX_TAGS":           {field: "editor.max_tags", typ: envTypeInt, description: "Maximum tags per document"},
	"RENDER_HIGHLIGHT_STYLE":    {field: "render.highlight_style", typ: envTypeString, description: "Chroma style for code blocks"},
	"RENDER_RUNNABLE_LANGUAGES": {field: "render.runnable_languages", typ: envTypeSlice, description: "Comma-separated runnable fence languages"},
	"SANDBOX_TIMEOUT":           {field: "sandbox.timeout", typ: envTypeDuration, description: "Time limit for one sandbox run"},
	"DIAGRAM_COMMAND":           {field: "diagram.command", typ: envTypeString, description: "mermaid-cli executable"},
	"DIAGRAM_TIMEOUT":           {field: "diagram.timeout", typ: envTypeDuration, description: "Time limit for one diagram render"},
	"DRAFTS_STORE":              {field: "drafts.store", typ: envTypeString, description: "Draft store: file, sqlite or memory"},
	"DRAFTS_PATH":               {field: "drafts.path", typ: envTypeString, description: "Draft directory or database file"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MDNOTE_ (e.g., MDNOTE_API_BASE_URL).
func LoadFromEnv(cfg *config.Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value, ok := lookup(envVar)
		if !ok || value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q (expected e.g. 500ms, 10s)", envVar, value)
		}
		return setDurationField(cfg, mapping.field, d)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.token":
		cfg.API.Token = value
	case "render.highlight_style":
		cfg.Render.HighlightStyle = value
	case "diagram.command":
		cfg.Diagram.Command = value
	case "drafts.store":
		cfg.Drafts.Store = config.DraftStoreKind(value)
	case "drafts.path":
		cfg.Drafts.Path = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "editor.max_tags":
		cfg.Editor.MaxTags = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setDurationField(cfg *config.Config, field string, value time.Duration) error {
	switch field {
	case "api.timeout":
		cfg.API.Timeout = value
	case "editor.autosave_interval":
		cfg.Editor.AutosaveInterval = value
	case "editor.draft_delay":
		cfg.Editor.DraftDelay = value
	case "editor.preview_delay":
		cfg.Editor.PreviewDelay = value
	case "sandbox.timeout":
		cfg.Sandbox.Timeout = value
	case "diagram.timeout":
		cfg.Diagram.Timeout = value
	default:
		return fmt.Errorf("unknown duration field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "render.runnable_languages":
		cfg.Render.RunnableLanguages = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Field       string
	Description string
}

// ListEnvVars returns every supported environment variable, sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{
			Name:        envVarPrefix + suffix,
			Field:       mapping.field,
			Description: mapping.description,
		})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
