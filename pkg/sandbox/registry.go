// Package sandbox runs code blocks marked [runnable] and streams their
// output line by line.
package sandbox

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnsupportedLanguage is returned when no runner handles a language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language describes how to run source in one language.
type Language struct {
	Name    string
	Aliases []string

	// FileName is the file the source is written to inside the work dir.
	FileName string

	// Command is the argv; the first element is the executable.
	Command []string
}

// DefaultLanguages returns the built-in runnable languages.
func DefaultLanguages() []Language {
	return []Language{
		{Name: "go", Aliases: []string{"golang"}, FileName: "main.go", Command: []string{"go", "run", "main.go"}},
		{Name: "javascript", Aliases: []string{"js", "node"}, FileName: "main.js", Command: []string{"node", "main.js"}},
		{Name: "python", Aliases: []string{"py", "python3"}, FileName: "main.py", Command: []string{"python3", "main.py"}},
	}
}

// Registry resolves language names and aliases.
type Registry struct {
	byName map[string]Language
}

// NewRegistry creates a registry for langs. With no arguments it holds
// DefaultLanguages.
func NewRegistry(langs ...Language) *Registry {
	if len(langs) == 0 {
		langs = DefaultLanguages()
	}

	reg := &Registry{byName: make(map[string]Language)}
	for _, lang := range langs {
		reg.Register(lang)
	}
	return reg
}

// Register adds or replaces lang and its aliases.
func (r *Registry) Register(lang Language) {
	r.byName[strings.ToLower(lang.Name)] = lang
	for _, alias := range lang.Aliases {
		r.byName[strings.ToLower(alias)] = lang
	}
}

// Resolve finds the language for a name or alias, case-insensitively.
func (r *Registry) Resolve(name string) (Language, bool) {
	lang, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return lang, ok
}

// Names returns every accepted name and alias, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
