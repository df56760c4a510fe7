// Package langdetect guesses the language of a fenced code block that has no
// language tag, so the preview can still highlight it. It wraps go-enry with
// a few cheap content sniffers that are more reliable on short snippets.
package langdetect

import (
	"bytes"
	"path"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Fence tags returned by the sniffers.
const (
	langGo         = "go"
	langPython     = "python"
	langJavaScript = "javascript"
	langJSON       = "json"
	langYAML       = "yaml"
	langHTML       = "html"
	langSQL        = "sql"
	langRust       = "rust"
	langDockerfile = "dockerfile"
	langBash       = "bash"
)

// classifierCandidates limits the enry classifier to languages people
// commonly paste into notes.
//
//nolint:gochecknoglobals // Read-only candidate list.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// sniffer inspects a snippet and returns a fence tag or "".
type sniffer func(s snippet) string

type snippet struct {
	raw     []byte
	trimmed []byte
	text    string
}

//nolint:gochecknoglobals // Ordered from most to least specific.
var sniffers = []sniffer{
	sniffGo,
	sniffPython,
	sniffHTML,
	sniffJSON,
	sniffDockerfile,
	sniffSQL,
	sniffRust,
	sniffJavaScript,
	sniffYAML,
}

// Guess returns a fence tag for code. The shebang wins, then the content
// sniffers, then the enry classifier when it is confident. It returns false
// when nothing matched.
func Guess(code string) (string, bool) {
	content := []byte(code)
	if len(bytes.TrimSpace(content)) == 0 {
		return "", false
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return Normalize(lang), true
	}

	snip := snippet{raw: content, trimmed: bytes.TrimSpace(content), text: code}
	for _, p := range sniffers {
		if lang := p(snip); lang != "" {
			return lang, true
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return Normalize(lang), true
	}

	return "", false
}

// FromFilename returns the fence tag for a display filename such as
// "main.go" or "Dockerfile".
func FromFilename(name string) (string, bool) {
	base := path.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == "/" {
		return "", false
	}
	if lang, safe := enry.GetLanguageByFilename(base); safe && lang != "" {
		return Normalize(lang), true
	}
	if lang, safe := enry.GetLanguageByExtension(base); safe && lang != "" {
		return Normalize(lang), true
	}
	return "", false
}

// Normalize converts an enry language name to a fence tag.
func Normalize(lang string) string {
	switch lang {
	case "Shell":
		return langBash
	case "Go Module":
		return langGo
	}
	return strings.ToLower(lang)
}

func sniffGo(s snippet) string {
	if bytes.HasPrefix(s.trimmed, []byte("package ")) {
		return langGo
	}
	return ""
}

func sniffPython(s snippet) string {
	switch {
	case strings.Contains(s.text, "def ") && strings.Contains(s.text, "):"):
		return langPython
	case strings.Contains(s.text, "__name__"), strings.Contains(s.text, "__main__"):
		return langPython
	case strings.Contains(s.text, "import ") && !strings.Contains(s.text, "import ("):
		if strings.Contains(s.text, "from ") || bytes.HasPrefix(s.trimmed, []byte("import ")) {
			return langPython
		}
	}
	return ""
}

func sniffHTML(s snippet) string {
	lower := bytes.ToLower(s.trimmed)
	for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return langHTML
		}
	}
	return ""
}

func sniffJSON(s snippet) string {
	if (bytes.HasPrefix(s.trimmed, []byte("{")) || bytes.HasPrefix(s.trimmed, []byte("["))) &&
		bytes.Contains(s.trimmed, []byte(`"`)) {
		return langJSON
	}
	return ""
}

func sniffDockerfile(s snippet) string {
	if bytes.HasPrefix(s.trimmed, []byte("FROM ")) ||
		(bytes.Contains(s.raw, []byte("\nFROM ")) && bytes.Contains(s.raw, []byte("\nRUN "))) {
		return langDockerfile
	}
	return ""
}

func sniffSQL(s snippet) string {
	upper := strings.ToUpper(strings.TrimSpace(s.text))
	for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, verb) {
			return langSQL
		}
	}
	return ""
}

func sniffRust(s snippet) string {
	if strings.Contains(s.text, "fn main()") || strings.Contains(s.text, "println!") || strings.Contains(s.text, "let mut ") {
		return langRust
	}
	return ""
}

func sniffJavaScript(s snippet) string {
	for _, marker := range []string{"=>", "const ", "let ", "console.log"} {
		if strings.Contains(s.text, marker) {
			return langJavaScript
		}
	}
	return ""
}

// sniffYAML counts "key: value" lines and root list items.
func sniffYAML(s snippet) string {
	count := 0
	for _, line := range bytes.Split(s.raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.ContainsAny(line, "({") &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			count++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			count++
		}
	}
	if count >= 2 {
		return langYAML
	}
	return ""
}
