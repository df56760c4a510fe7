// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// DefaultTermWidth is used when the output is not a terminal.
const DefaultTermWidth = 100

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Outline styles
	Heading lipgloss.Style
	Anchor  lipgloss.Style
	Level   lipgloss.Style

	// Diff styles
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style
	DiffGutter  lipgloss.Style

	// Sandbox output styles
	Stdout lipgloss.Style
	Stderr lipgloss.Style
	System lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style

	// Help styles
	Command lipgloss.Style
	Section lipgloss.Style
	Flag    lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

func color(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// newColorStyles creates styles with ANSI colors.
func newColorStyles() *Styles {
	return &Styles{
		Heading: lipgloss.NewStyle().Bold(true),
		Anchor:  color("12"),
		Level:   color("8"),

		DiffHeader:  lipgloss.NewStyle().Bold(true),
		DiffHunk:    color("14"),
		DiffAdd:     color("10"),
		DiffRemove:  color("9"),
		DiffContext: color("8"),
		DiffGutter:  color("8"),

		Stdout: lipgloss.NewStyle(),
		Stderr: color("11"),
		System: color("8").Italic(true),

		Success: color("10").Bold(true),
		Failure: color("9").Bold(true),
		Warning: color("11").Bold(true),

		Command: color("14").Bold(true),
		Section: color("11").Bold(true),
		Flag:    color("12"),

		Dim:  color("8"),
		Bold: lipgloss.NewStyle().Bold(true),
	}
}

// newNoColorStyles creates styles with no color formatting.
func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Heading:     plain,
		Anchor:      plain,
		Level:       plain,
		DiffHeader:  plain,
		DiffHunk:    plain,
		DiffAdd:     plain,
		DiffRemove:  plain,
		DiffContext: plain,
		DiffGutter:  plain,
		Stdout:      plain,
		Stderr:      plain,
		System:      plain,
		Success:     plain,
		Failure:     plain,
		Warning:     plain,
		Command:     plain,
		Section:     plain,
		Flag:        plain,
		Dim:         plain,
		Bold:        plain,
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// TerminalWidth returns the width of writer when it is a terminal, or
// DefaultTermWidth.
func TerminalWidth(writer io.Writer) int {
	f, ok := writer.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultTermWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTermWidth
	}
	return width
}
