package textbuf

import "strings"

// ApplyEdits applies a sorted, validated slice of edits to content.
// Edits must be prepared with PrepareEdits before calling.
func ApplyEdits(content string, edits []TextEdit) string {
	if len(edits) == 0 {
		return content
	}

	delta := 0
	for _, e := range edits {
		delta += len(e.NewText) - (e.End - e.Start)
	}

	var out strings.Builder
	out.Grow(len(content) + delta)

	cursor := 0
	for _, e := range edits {
		out.WriteString(content[cursor:e.Start])
		out.WriteString(e.NewText)
		cursor = e.End
	}
	out.WriteString(content[cursor:])

	return out.String()
}

// MapOffset maps an offset in the pre-edit content to the post-edit content.
// Edits must be prepared with PrepareEdits.
//
// An offset at an insertion point, inside a replaced range, or at its end
// moves after the new text. An offset at the start of a non-empty replaced
// range stays before it.
func MapOffset(pos int, edits []TextEdit) int {
	delta := 0
	for _, e := range edits {
		switch {
		case pos < e.Start:
			return pos + delta
		case pos > e.End:
			delta += len(e.NewText) - (e.End - e.Start)
		case pos == e.Start && e.Start != e.End:
			return pos + delta
		default:
			return e.Start + delta + len(e.NewText)
		}
	}
	return pos + delta
}
