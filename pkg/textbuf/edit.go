// Package textbuf provides an in-memory text buffer with a selection and
// atomic, multi-edit transactions.
package textbuf

// TextEdit replaces the bytes [Start, End) of the buffer with NewText.
type TextEdit struct {
	// Start is the byte offset where the edit begins (inclusive).
	Start int

	// End is the byte offset where the edit ends (exclusive).
	End int

	NewText string
}

// EditBuilder accumulates edits for a single transaction.
type EditBuilder struct {
	Edits []TextEdit
}

// NewEditBuilder creates an empty EditBuilder.
func NewEditBuilder() *EditBuilder {
	return &EditBuilder{
		Edits: make([]TextEdit, 0),
	}
}

// ReplaceRange adds an edit that replaces bytes [start, end) with newText.
func (b *EditBuilder) ReplaceRange(start, end int, newText string) *EditBuilder {
	b.Edits = append(b.Edits, TextEdit{
		Start:   start,
		End:     end,
		NewText: newText,
	})
	return b
}

// Insert adds an edit that inserts text at offset.
func (b *EditBuilder) Insert(offset int, text string) *EditBuilder {
	return b.ReplaceRange(offset, offset, text)
}

// Delete adds an edit that deletes bytes [start, end).
func (b *EditBuilder) Delete(start, end int) *EditBuilder {
	return b.ReplaceRange(start, end, "")
}

// Len returns the number of accumulated edits.
func (b *EditBuilder) Len() int {
	return len(b.Edits)
}
