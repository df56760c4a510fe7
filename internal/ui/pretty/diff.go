package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/mdnote/pkg/linediff"
)

const (
	sideSeparator = " │ "
	minColumn     = 10
)

// FormatUnified colors a unified diff.
func (s *Styles) FormatUnified(diff *linediff.Unified) string {
	if !diff.HasChanges() {
		return ""
	}

	lines := strings.Split(strings.TrimSuffix(diff.String(), "\n"), "\n")
	var builder strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			builder.WriteString(s.DiffHeader.Render(line))
		case strings.HasPrefix(line, "@@"):
			builder.WriteString(s.DiffHunk.Render(line))
		case strings.HasPrefix(line, "+"):
			builder.WriteString(s.DiffAdd.Render(line))
		case strings.HasPrefix(line, "-"):
			builder.WriteString(s.DiffRemove.Render(line))
		default:
			builder.WriteString(s.DiffContext.Render(line))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// FormatSideBySide lays rows out in two columns that fit width.
func (s *Styles) FormatSideBySide(rows []linediff.Row, width int) string {
	column := max((width-lipgloss.Width(sideSeparator))/2, minColumn)

	var builder strings.Builder
	for _, row := range rows {
		builder.WriteString(s.formatCell(row.Left, column))
		builder.WriteString(s.DiffGutter.Render(sideSeparator))
		builder.WriteString(strings.TrimRight(s.formatCell(row.Right, column), " "))
		builder.WriteByte('\n')
	}
	return builder.String()
}

func (s *Styles) formatCell(cell *linediff.Cell, column int) string {
	if cell == nil {
		return strings.Repeat(" ", column)
	}

	marker, style := " ", s.DiffContext
	switch cell.Kind {
	case linediff.Added:
		marker, style = "+", s.DiffAdd
	case linediff.Removed:
		marker, style = "-", s.DiffRemove
	case linediff.Same:
	}

	text := fit(marker+" "+cell.Value, column)
	return style.Render(text)
}

// fit truncates or pads text to exactly column cells.
func fit(text string, column int) string {
	text = lipgloss.NewStyle().Inline(true).MaxWidth(column).Render(text)
	if pad := column - lipgloss.Width(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return text
}

// FormatDiffSummary reports how many lines were added and removed.
func (s *Styles) FormatDiffSummary(rows []linediff.Row) string {
	added, removed := linediff.Count(rows)
	if added+removed == 0 {
		return s.Dim.Render("no changes")
	}
	return fmt.Sprintf("%s, %s",
		s.DiffAdd.Render(fmt.Sprintf("+%d", added)),
		s.DiffRemove.Render(fmt.Sprintf("-%d", removed)),
	)
}
