package markdown

import (
	"strings"
)

// TOCFenceLang tags the fenced block that carries an injected table of
// contents.
const TOCFenceLang = "toc"

// BuildTOC renders headings as a nested markdown list. Indentation is two
// spaces per level below the first heading's level; headings shallower than
// the first are not indented.
func BuildTOC(headings []Heading) string {
	if len(headings) == 0 {
		return ""
	}

	baseLevel := headings[0].Level
	lines := make([]string, 0, len(headings))
	for _, heading := range headings {
		indent := strings.Repeat("  ", max(0, heading.Level-baseLevel))
		lines = append(lines, indent+"- ["+heading.Text+"](#"+heading.ID+")")
	}

	return strings.Join(lines, "\n")
}

// IsTOCToken reports whether line is a table-of-contents placeholder.
func IsTOCToken(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "[toc]" || trimmed == "[TOC]"
}

// InjectTOC replaces every placeholder line outside fenced regions with a
// fenced block tagged "toc" holding toc. When toc is empty the placeholder
// lines are removed.
func InjectTOC(src, toc string) string {
	lines := splitLines(src)
	out := make([]string, 0, len(lines))

	var fence fenceTracker
	for _, line := range lines {
		if fence.update(line) || !IsTOCToken(line) {
			out = append(out, line)
			continue
		}
		if toc == "" {
			continue
		}
		out = append(out, fenceMarker+TOCFenceLang, toc, fenceMarker)
	}

	return strings.Join(out, "\n")
}
