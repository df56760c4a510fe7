package trigger

import (
	"strings"

	"github.com/yaklabco/mdnote/pkg/editor"
)

// Command is an entry in the slash menu.
type Command struct {
	ID       string
	Label    string
	Keywords []string

	// Apply runs after the trigger text has been removed.
	Apply func(ctrl *editor.Controller) error
}

// Matches reports whether filter is a case-insensitive substring of the
// command's label, ID or any keyword. An empty filter matches everything.
func (c Command) Matches(filter string) bool {
	if filter == "" {
		return true
	}

	needle := strings.ToLower(filter)
	if strings.Contains(strings.ToLower(c.Label), needle) || strings.Contains(strings.ToLower(c.ID), needle) {
		return true
	}
	for _, keyword := range c.Keywords {
		if strings.Contains(strings.ToLower(keyword), needle) {
			return true
		}
	}
	return false
}

// FilterCommands returns the commands matching filter, in order.
func FilterCommands(commands []Command, filter string) []Command {
	out := make([]Command, 0, len(commands))
	for _, cmd := range commands {
		if cmd.Matches(filter) {
			out = append(out, cmd)
		}
	}
	return out
}

func linePrefix(prefix string) func(*editor.Controller) error {
	return func(ctrl *editor.Controller) error {
		return ctrl.ToggleLinePrefix(prefix)
	}
}

func wrap(prefix, suffix string) func(*editor.Controller) error {
	return func(ctrl *editor.Controller) error {
		return ctrl.WrapSelection(prefix, suffix)
	}
}

// insert inserts before+after at the cursor and leaves the cursor between
// them.
func insert(before, after string) func(*editor.Controller) error {
	return func(ctrl *editor.Controller) error {
		from := ctrl.Selection().From()
		if err := ctrl.InsertAtCursor(before + after); err != nil {
			return err
		}
		pos := from + len(before)
		return ctrl.Select(pos, pos)
	}
}

// DefaultCommands returns the built-in slash commands.
func DefaultCommands() []Command {
	return []Command{
		{ID: "h1", Label: "Heading 1", Keywords: []string{"title"}, Apply: linePrefix("# ")},
		{ID: "h2", Label: "Heading 2", Keywords: []string{"subtitle"}, Apply: linePrefix("## ")},
		{ID: "h3", Label: "Heading 3", Keywords: []string{"subsection"}, Apply: linePrefix("### ")},
		{ID: "ul", Label: "Bullet list", Keywords: []string{"unordered"}, Apply: linePrefix("- ")},
		{ID: "ol", Label: "Numbered list", Keywords: []string{"ordered"}, Apply: linePrefix("1. ")},
		{ID: "todo", Label: "Task list", Keywords: []string{"checkbox"}, Apply: linePrefix("- [ ] ")},
		{ID: "quote", Label: "Quote", Keywords: []string{"blockquote"}, Apply: linePrefix("> ")},
		{ID: "code", Label: "Code block", Keywords: []string{"pre", "snippet"}, Apply: insert("```\n", "\n```")},
		{
			ID: "table", Label: "Table", Keywords: []string{"grid"},
			Apply: insert("| Column | Column |\n| --- | --- |\n| ", " |  |\n"),
		},
		{ID: "hr", Label: "Divider", Keywords: []string{"rule", "separator"}, Apply: insert("---\n", "")},
		{ID: "math", Label: "Math block", Keywords: []string{"latex", "formula"}, Apply: insert("$$\n", "\n$$")},
		{
			ID: "mermaid", Label: "Mermaid diagram", Keywords: []string{"chart", "flow", "graph"},
			Apply: insert("```mermaid\ngraph TD\n  A --> B", "\n```"),
		},
		{ID: "toc", Label: "Table of contents", Keywords: []string{"outline"}, Apply: insert("[toc]\n", "")},
		{
			ID: "warning", Label: "Warning", Keywords: []string{"admonition", "alert", "callout"},
			Apply: insert(":::warning\n", "\n:::"),
		},
		{ID: "link", Label: "Link", Keywords: []string{"url"}, Apply: wrap("[", "](url)")},
		{ID: "image", Label: "Image", Keywords: []string{"picture", "photo"}, Apply: insert("![PIC:", "](url)")},
		{ID: "bold", Label: "Bold", Keywords: []string{"strong"}, Apply: wrap("**", "**")},
		{ID: "italic", Label: "Italic", Keywords: []string{"emphasis"}, Apply: wrap("*", "*")},
		{ID: "strike", Label: "Strikethrough", Keywords: []string{"delete"}, Apply: wrap("~~", "~~")},
		{ID: "inline-code", Label: "Inline code", Keywords: []string{"mono"}, Apply: wrap("`", "`")},
	}
}
