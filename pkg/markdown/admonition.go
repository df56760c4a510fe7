package markdown

import "strings"

const (
	admonitionOpen  = ":::warning"
	admonitionClose = ":::"

	// AdmonitionClass is the CSS class shared by all alert blocks.
	AdmonitionClass = "md-alert"
)

// ConvertAdmonitions wraps ":::warning" ... ":::" blocks in an alert div. The
// body is separated from the div tags by blank lines so it is still parsed as
// markdown. A block with no closing line is left untouched.
func ConvertAdmonitions(src string) string {
	lines := splitLines(src)
	out := make([]string, 0, len(lines))

	var fence fenceTracker
	for idx := 0; idx < len(lines); idx++ {
		line := lines[idx]
		if fence.update(line) || !strings.EqualFold(strings.TrimSpace(line), admonitionOpen) {
			out = append(out, line)
			continue
		}

		end := findAdmonitionClose(lines, idx+1)
		if end < 0 {
			out = append(out, line)
			continue
		}

		out = append(out, `<div class="`+AdmonitionClass+` `+AdmonitionClass+`-warning">`, "")
		out = append(out, lines[idx+1:end]...)
		out = append(out, "", "</div>")
		idx = end
	}

	return strings.Join(out, "\n")
}

// findAdmonitionClose returns the index of the first closing line at or after
// start that is outside a fenced region, or -1.
func findAdmonitionClose(lines []string, start int) int {
	var fence fenceTracker
	for idx := start; idx < len(lines); idx++ {
		if fence.update(lines[idx]) {
			continue
		}
		if strings.TrimSpace(lines[idx]) == admonitionClose {
			return idx
		}
	}
	return -1
}
