package markdown

import (
	"regexp"
	"strings"
)

// Heading is an ATX heading found in the source.
type Heading struct {
	// Level is 1 through 6.
	Level int

	Text string

	// ID is the unique anchor slug. It is empty until AssignSlugs runs.
	ID string
}

var (
	headingPattern = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.+)$`)

	// closingSequence matches an optional trailing run of '#' preceded by
	// whitespace, as in "## Title ##".
	closingSequence = regexp.MustCompile(`\s+#+\s*$`)
)

// ExtractHeadings returns the ATX headings of src in document order. Lines
// inside fenced code regions are ignored.
func ExtractHeadings(src string) []Heading {
	var headings []Heading
	var fence fenceTracker

	for _, line := range splitLines(src) {
		if fence.update(line) {
			continue
		}

		match := headingPattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}

		text := strings.TrimSpace(closingSequence.ReplaceAllString(match[2], ""))
		if text == "" {
			continue
		}

		headings = append(headings, Heading{
			Level: len(match[1]),
			Text:  text,
		})
	}

	return headings
}

// AssignSlugs returns a copy of headings with unique IDs assigned in order.
func AssignSlugs(headings []Heading) []Heading {
	slugger := NewSlugger()

	out := make([]Heading, len(headings))
	for idx, heading := range headings {
		heading.ID = slugger.Slug(heading.Text)
		out[idx] = heading
	}

	return out
}
