package textbuf

import (
	"fmt"
	"sync"
)

// Selection is a range in the buffer. Anchor is where the selection started
// and Head is where it currently ends; either may be the larger offset.
type Selection struct {
	Anchor int
	Head   int
}

// Cursor returns an empty selection at pos.
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// Range returns a selection from anchor to head.
func Range(anchor, head int) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// From returns the smaller end of the selection.
func (s Selection) From() int {
	return min(s.Anchor, s.Head)
}

// To returns the larger end of the selection.
func (s Selection) To() int {
	return max(s.Anchor, s.Head)
}

// Empty reports whether the selection is a bare cursor.
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

// Transaction is a set of edits and an optional selection committed together.
// Edit offsets refer to the content before the transaction. Selection, when
// set, refers to the content after it; otherwise the current selection is
// mapped through the edits.
type Transaction struct {
	Edits     []TextEdit
	Selection *Selection
}

// Change describes a committed transaction.
type Change struct {
	// DocChanged is true when the text changed.
	DocChanged bool

	// SelectionChanged is true when the selection moved.
	SelectionChanged bool

	Text      string
	Selection Selection
}

// Listener is called after every committed transaction.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Buffer holds document text and a selection. All methods are safe for
// concurrent use. Listeners run synchronously after the commit, outside the
// buffer lock, so they may read the buffer or dispatch follow-up transactions.
type Buffer struct {
	mu        sync.Mutex
	text      string
	selection Selection
	listeners []subscription
	nextID    int
}

// New creates a buffer holding text with the cursor at offset 0.
func New(text string) *Buffer {
	return &Buffer{text: text}
}

// Text returns the current content.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Selection returns the current selection.
func (b *Buffer) Selection() Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection
}

// State returns the content and selection under a single lock.
func (b *Buffer) State() (string, Selection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, b.selection
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.text)
}

// Subscribe registers a listener and returns a function that removes it.
func (b *Buffer) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for idx, sub := range b.listeners {
			if sub.id == id {
				b.listeners = append(b.listeners[:idx:idx], b.listeners[idx+1:]...)
				return
			}
		}
	}
}

// Dispatch applies tx atomically. When any edit is invalid, or the explicit
// selection falls outside the new content, the buffer is left untouched and
// the error is returned.
func (b *Buffer) Dispatch(tx Transaction) error {
	b.mu.Lock()

	edits, err := PrepareEdits(tx.Edits, b.text)
	if err != nil {
		b.mu.Unlock()
		return err
	}

	text := ApplyEdits(b.text, edits)

	var selection Selection
	if tx.Selection != nil {
		selection = *tx.Selection
		if err := checkSelection(selection, text); err != nil {
			b.mu.Unlock()
			return err
		}
	} else {
		selection = Selection{
			Anchor: MapOffset(b.selection.Anchor, edits),
			Head:   MapOffset(b.selection.Head, edits),
		}
	}

	change := Change{
		DocChanged:       text != b.text,
		SelectionChanged: selection != b.selection,
		Text:             text,
		Selection:        selection,
	}
	b.text = text
	b.selection = selection

	listeners := make([]Listener, 0, len(b.listeners))
	for _, sub := range b.listeners {
		listeners = append(listeners, sub.fn)
	}
	b.mu.Unlock()

	if !change.DocChanged && !change.SelectionChanged {
		return nil
	}
	for _, fn := range listeners {
		fn(change)
	}

	return nil
}

// SetSelection moves the selection without editing.
func (b *Buffer) SetSelection(sel Selection) error {
	return b.Dispatch(Transaction{Selection: &sel})
}

func checkSelection(sel Selection, text string) error {
	for _, pos := range []int{sel.Anchor, sel.Head} {
		if pos < 0 || pos > len(text) {
			return fmt.Errorf("selection offset %d outside content length %d", pos, len(text))
		}
		if !onRuneBoundary(text, pos) {
			return fmt.Errorf("selection offset %d splits a multi-byte character", pos)
		}
	}
	return nil
}
