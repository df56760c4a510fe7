package configloader

import (
	"slices"

	"github.com/yaklabco/mdnote/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Sandbox languages: merged by name, override entries win
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	setNonZero(&result.API.BaseURL, override.API.BaseURL)
	setNonZero(&result.API.Token, override.API.Token)
	setNonZero(&result.API.Timeout, override.API.Timeout)

	setNonZero(&result.Editor.AutosaveInterval, override.Editor.AutosaveInterval)
	setNonZero(&result.Editor.DraftDelay, override.Editor.DraftDelay)
	setNonZero(&result.Editor.PreviewDelay, override.Editor.PreviewDelay)
	setNonZero(&result.Editor.MaxTags, override.Editor.MaxTags)

	setNonZero(&result.Render.HighlightStyle, override.Render.HighlightStyle)
	setNonZero(&result.Render.DiagramConcurrency, override.Render.DiagramConcurrency)
	if override.Render.RunnableLanguages != nil {
		result.Render.RunnableLanguages = slices.Clone(override.Render.RunnableLanguages)
	}

	setNonZero(&result.Sandbox.Timeout, override.Sandbox.Timeout)
	result.Sandbox.Languages = mergeLanguages(base.Sandbox.Languages, override.Sandbox.Languages)

	setNonZero(&result.Diagram.Command, override.Diagram.Command)
	setNonZero(&result.Diagram.Timeout, override.Diagram.Timeout)

	setNonZero(&result.Drafts.Store, override.Drafts.Store)
	setNonZero(&result.Drafts.Path, override.Drafts.Path)

	return &result
}

func setNonZero[T comparable](dst *T, value T) {
	var zero T
	if value != zero {
		*dst = value
	}
}

// mergeLanguages keeps base order and replaces entries whose name appears
// in override. New override entries are appended.
func mergeLanguages(base, override []config.LanguageConfig) []config.LanguageConfig {
	if len(override) == 0 {
		return slices.Clone(base)
	}

	result := slices.Clone(base)
	for _, lang := range override {
		idx := slices.IndexFunc(result, func(l config.LanguageConfig) bool { return l.Name == lang.Name })
		if idx >= 0 {
			result[idx] = lang
		} else {
			result = append(result, lang)
		}
	}
	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
