package textbuf

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// ValidationError describes an edit whose range does not fit the content.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Start, e.Edit.End, e.Message)
}

// ConflictError describes two edits whose ranges overlap.
type ConflictError struct {
	Edit1 TextEdit
	Edit2 TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.Edit1.Start, e.Edit1.End,
		e.Edit2.Start, e.Edit2.End)
}

// ValidateEdits checks that every edit has a valid range within content and
// that both ends fall on rune boundaries.
func ValidateEdits(edits []TextEdit, content string) error {
	for _, edit := range edits {
		if edit.Start < 0 {
			return &ValidationError{Edit: edit, Message: "start offset is negative"}
		}
		if edit.End < edit.Start {
			return &ValidationError{Edit: edit, Message: "end offset is before start offset"}
		}
		if edit.End > len(content) {
			return &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.End, len(content)),
			}
		}
		if !onRuneBoundary(content, edit.Start) || !onRuneBoundary(content, edit.End) {
			return &ValidationError{Edit: edit, Message: "offset splits a multi-byte character"}
		}
	}
	return nil
}

func onRuneBoundary(content string, offset int) bool {
	return offset == len(content) || utf8.RuneStart(content[offset])
}

// SortEdits sorts edits by start offset, then by end offset. The sort is
// stable so insertions at the same offset keep their submission order.
func SortEdits(edits []TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}
		return edits[i].End < edits[j].End
	})
}

// DetectConflicts returns the first pair of overlapping edits in a sorted
// slice, or nil.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev := edits[i-1]
		curr := edits[i]
		if curr.Start < prev.End {
			return &ConflictError{Edit1: prev, Edit2: curr}
		}
	}
	return nil
}

// PrepareEdits validates, sorts, and checks edits for conflicts. The input
// slice is not modified.
func PrepareEdits(edits []TextEdit, content string) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}

	if err := ValidateEdits(edits, content); err != nil {
		return nil, err
	}

	result := make([]TextEdit, len(edits))
	copy(result, edits)
	SortEdits(result)

	if err := DetectConflicts(result); err != nil {
		return nil, err
	}

	return result, nil
}
