package markdown

import (
	"regexp"
	"strings"
)

// AllowedHTMLTags lists the inline HTML elements passed through to the
// renderer. Everything else is shown as literal text.
//
//nolint:gochecknoglobals // Read-only lookup table.
var AllowedHTMLTags = map[string]bool{
	"span":    true,
	"u":       true,
	"br":      true,
	"details": true,
	"summary": true,
	"center":  true,
	"font":    true,
	"div":     true,
}

var (
	// tagPattern matches an opening, closing or self-closing tag.
	tagPattern = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9-]*)((?:\s[^<>]*)?/?)>`)

	eventHandlerPattern = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
	scriptURIPattern    = regexp.MustCompile(`(?i)javascript\s*:`)
)

// EscapeUnsupportedHTML neutralizes HTML outside fenced regions. Allowed tags
// are kept, but lose all attributes when any attribute carries an event
// handler or a javascript: URI. Other tags are entity-escaped.
func EscapeUnsupportedHTML(src string) string {
	lines := splitLines(src)

	var fence fenceTracker
	for idx, line := range lines {
		if fence.update(line) {
			continue
		}
		lines[idx] = tagPattern.ReplaceAllStringFunc(line, sanitizeTag)
	}

	return strings.Join(lines, "\n")
}

func sanitizeTag(tag string) string {
	match := tagPattern.FindStringSubmatch(tag)
	closing, name, attrs := match[1], match[2], match[3]

	if !AllowedHTMLTags[strings.ToLower(name)] {
		return "&lt;" + tag[1:len(tag)-1] + "&gt;"
	}

	if !IsUnsafeAttributes(attrs) {
		return tag
	}

	if strings.HasSuffix(strings.TrimSpace(attrs), "/") {
		return "<" + name + " />"
	}
	return "<" + closing + name + ">"
}

// IsUnsafeAttributes reports whether an attribute string contains an event
// handler or a javascript: URI.
func IsUnsafeAttributes(attrs string) bool {
	return eventHandlerPattern.MatchString(attrs) || scriptURIPattern.MatchString(attrs)
}
