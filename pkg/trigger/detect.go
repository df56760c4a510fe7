// Package trigger recognizes cursor-relative triggers while the user types:
// the slash command menu ("/hea") and wikilink autocomplete ("[[Pro").
package trigger

import (
	"regexp"
	"strings"

	"github.com/yaklabco/mdnote/pkg/editor"
)

var wikilinkPattern = regexp.MustCompile(`\[\[([^\]\[]*)$`)

// DetectSlash looks for a slash trigger on the cursor's line. The nearest '/'
// before the cursor qualifies when it starts the line or follows a space and
// no space separates it from the cursor. It returns the text typed after the
// slash and the slash's offset.
func DetectSlash(text string, cursor int) (string, int, bool) {
	if cursor < 0 || cursor > len(text) {
		return "", 0, false
	}

	lineStart, _ := editor.LineAt(text, cursor)
	before := text[lineStart:cursor]

	idx := strings.LastIndexByte(before, '/')
	if idx < 0 {
		return "", 0, false
	}
	if idx > 0 && !isBlank(before[idx-1]) {
		return "", 0, false
	}

	filter := before[idx+1:]
	if strings.ContainsAny(filter, " \t") {
		return "", 0, false
	}

	return filter, lineStart + idx, true
}

// DetectWikilink looks for an unclosed "[[" on the cursor's line. It returns
// the query typed after the brackets and the offset of the first '['.
func DetectWikilink(text string, cursor int) (string, int, bool) {
	if cursor < 0 || cursor > len(text) {
		return "", 0, false
	}

	lineStart, _ := editor.LineAt(text, cursor)
	before := text[lineStart:cursor]

	loc := wikilinkPattern.FindStringSubmatchIndex(before)
	if loc == nil {
		return "", 0, false
	}

	return before[loc[2]:loc[3]], lineStart + loc[0], true
}

// WikilinkMarkdown returns the markdown link inserted for a document.
func WikilinkMarkdown(target LinkTarget) string {
	return "[" + target.Title + "](/docs/" + target.ID + ")"
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t'
}
