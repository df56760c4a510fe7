package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdnote/pkg/markdown"
	"github.com/yaklabco/mdnote/pkg/sandbox"
)

// FormatHeadings renders headings as an indented outline with their anchors.
func (s *Styles) FormatHeadings(headings []markdown.Heading) string {
	var builder strings.Builder
	for _, h := range headings {
		indent := strings.Repeat("  ", max(h.Level-1, 0))
		fmt.Fprintf(&builder, "%s%s %s %s\n",
			indent,
			s.Level.Render(strings.Repeat("#", h.Level)),
			s.Heading.Render(h.Text),
			s.Anchor.Render("#"+h.ID),
		)
	}
	return builder.String()
}

// FormatStats renders the status-bar counters on one line.
func (s *Styles) FormatStats(stats markdown.TextStats) string {
	return s.Dim.Render(fmt.Sprintf("%d words · %d chars (%d without spaces) · %d lines",
		stats.Words, stats.Chars, stats.CharsNoSpace, stats.Lines))
}

// FormatRunLine renders one line of sandbox output.
func (s *Styles) FormatRunLine(line sandbox.Line) string {
	switch line.Stream {
	case sandbox.Stderr:
		return s.Stderr.Render(line.Text)
	case sandbox.System:
		return s.System.Render(line.Text)
	default:
		return s.Stdout.Render(line.Text)
	}
}

// FormatRunResult renders the final status of a sandbox run.
func (s *Styles) FormatRunResult(label string, res sandbox.Result) string {
	switch {
	case res.Err != nil:
		return s.Failure.Render(fmt.Sprintf("✗ %s: %v", label, res.Err))
	case res.ExitCode != 0:
		return s.Failure.Render(fmt.Sprintf("✗ %s exited with %d", label, res.ExitCode))
	default:
		return s.Success.Render("✓ " + label)
	}
}
