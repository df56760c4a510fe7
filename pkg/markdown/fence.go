package markdown

import "strings"

// fenceMarker opens and closes a fenced code region.
const fenceMarker = "```"

// fenceTracker follows fenced code regions while scanning line by line.
type fenceTracker struct {
	open bool
}

// update consumes line and reports whether it belongs to a fenced region,
// opening and closing delimiters included.
func (f *fenceTracker) update(line string) bool {
	if isFenceDelimiter(line) {
		f.open = !f.open
		return true
	}
	return f.open
}

func isFenceDelimiter(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), fenceMarker)
}

// splitLines splits text on "\n". Joining the result with "\n" restores text.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// mapOutsideFences applies fn to every maximal run of lines outside fenced
// regions. Fenced lines are copied through unchanged.
func mapOutsideFences(text string, fn func(string) string) string {
	lines := splitLines(text)
	out := make([]string, 0, len(lines))

	var fence fenceTracker
	var pending []string
	flush := func() {
		if len(pending) == 0 {
			return
		}
		out = append(out, splitLines(fn(strings.Join(pending, "\n")))...)
		pending = pending[:0]
	}

	for _, line := range lines {
		if fence.update(line) {
			flush()
			out = append(out, line)
			continue
		}
		pending = append(pending, line)
	}
	flush()

	return strings.Join(out, "\n")
}
