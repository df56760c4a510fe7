// Package editor implements formatting operations on top of a text buffer:
// wrap and line-prefix toggles, cursor insertion and placeholder
// replacement. A Controller without an attached buffer accepts every call and
// does nothing.
package editor

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yaklabco/mdnote/pkg/textbuf"
)

// Controller edits the attached buffer. It is safe for concurrent use.
type Controller struct {
	mu          sync.RWMutex
	buf         *textbuf.Buffer
	unsubscribe func()

	listenersMu sync.Mutex
	listeners   []listenerEntry
	nextID      int

	snapshot atomic.Pointer[string]
}

type listenerEntry struct {
	id int
	fn textbuf.Listener
}

// NewController creates a Controller with no buffer attached.
func NewController() *Controller {
	c := &Controller{}
	empty := ""
	c.snapshot.Store(&empty)
	return c
}

// Attach connects buf, replacing any previously attached buffer.
func (c *Controller) Attach(buf *textbuf.Buffer) {
	c.Detach()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf = buf
	text := buf.Text()
	c.snapshot.Store(&text)
	c.unsubscribe = buf.Subscribe(c.forward)
}

// Detach disconnects the current buffer. The last snapshot is kept.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.buf = nil
}

// Attached reports whether a buffer is connected.
func (c *Controller) Attached() bool {
	return c.buffer() != nil
}

// Subscribe registers fn for every committed change of the attached buffer,
// including buffers attached later. It returns a function that removes fn.
func (c *Controller) Subscribe(fn textbuf.Listener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		for idx, entry := range c.listeners {
			if entry.id == id {
				c.listeners = append(c.listeners[:idx:idx], c.listeners[idx+1:]...)
				return
			}
		}
	}
}

// forward updates the snapshot before any listener observes the change.
func (c *Controller) forward(change textbuf.Change) {
	if change.DocChanged {
		text := change.Text
		c.snapshot.Store(&text)
	}

	c.listenersMu.Lock()
	listeners := make([]textbuf.Listener, 0, len(c.listeners))
	for _, entry := range c.listeners {
		listeners = append(listeners, entry.fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}

func (c *Controller) buffer() *textbuf.Buffer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf
}

// Snapshot returns the content as of the last committed edit. It stays valid
// after Detach.
func (c *Controller) Snapshot() string {
	return *c.snapshot.Load()
}

// Content returns the buffer text, or "" when detached.
func (c *Controller) Content() string {
	buf := c.buffer()
	if buf == nil {
		return ""
	}
	return buf.Text()
}

// Selection returns the buffer selection, or an empty one when detached.
func (c *Controller) Selection() textbuf.Selection {
	buf := c.buffer()
	if buf == nil {
		return textbuf.Selection{}
	}
	return buf.Selection()
}

// Select moves the selection.
func (c *Controller) Select(anchor, head int) error {
	buf := c.buffer()
	if buf == nil {
		return nil
	}
	return buf.SetSelection(textbuf.Range(anchor, head))
}

// SetContent replaces the whole document.
func (c *Controller) SetContent(text string) error {
	buf := c.buffer()
	if buf == nil {
		return nil
	}

	current := buf.Text()
	if current == text {
		return nil
	}
	return buf.Dispatch(textbuf.Transaction{
		Edits: []textbuf.TextEdit{{Start: 0, End: len(current), NewText: text}},
	})
}

// Replace replaces bytes [from, to) with text and leaves the cursor at the
// end of the inserted text.
func (c *Controller) Replace(from, to int, text string) error {
	buf := c.buffer()
	if buf == nil {
		return nil
	}

	cursor := textbuf.Cursor(from + len(text))
	return buf.Dispatch(textbuf.Transaction{
		Edits:     []textbuf.TextEdit{{Start: from, End: to, NewText: text}},
		Selection: &cursor,
	})
}

// InsertAtCursor replaces the selection with text and places the cursor
// after it.
func (c *Controller) InsertAtCursor(text string) error {
	buf := c.buffer()
	if buf == nil {
		return nil
	}

	sel := buf.Selection()
	return c.Replace(sel.From(), sel.To(), text)
}

// WrapSelection toggles prefix and suffix around the selection. When the
// selection is already surrounded by them they are removed; otherwise they
// are added. Either way the selection keeps covering the same inner text.
func (c *Controller) WrapSelection(prefix, suffix string) error {
	buf := c.buffer()
	if buf == nil {
		return nil
	}

	text, sel := buf.State()
	from, to := sel.From(), sel.To()

	outerFrom := from - len(prefix)
	outerTo := to + len(suffix)
	if outerFrom >= 0 && outerTo <= len(text) &&
		text[outerFrom:from] == prefix && text[to:outerTo] == suffix {
		inner := textbuf.Range(outerFrom, outerFrom+(to-from))
		return buf.Dispatch(textbuf.Transaction{
			Edits: []textbuf.TextEdit{
				{Start: outerFrom, End: from},
				{Start: to, End: outerTo},
			},
			Selection: &inner,
		})
	}

	inner := textbuf.Range(from+len(prefix), to+len(prefix))
	return buf.Dispatch(textbuf.Transaction{
		Edits: []textbuf.TextEdit{
			{Start: from, End: from, NewText: prefix},
			{Start: to, End: to, NewText: suffix},
		},
		Selection: &inner,
	})
}

// ToggleLinePrefix toggles prefix at the start of every line the selection
// touches. When all of them already carry it, it is removed from each;
// otherwise it is added to the lines that lack it. The selection shifts with
// the edits and never moves before the start of its line.
func (c *Controller) ToggleLinePrefix(prefix string) error {
	buf := c.buffer()
	if buf == nil || prefix == "" {
		return nil
	}

	text, sel := buf.State()
	starts := lineStarts(text, sel.From(), sel.To())

	allPrefixed := true
	for _, start := range starts {
		if !strings.HasPrefix(text[start:], prefix) {
			allPrefixed = false
			break
		}
	}

	builder := textbuf.NewEditBuilder()
	for _, start := range starts {
		switch {
		case allPrefixed:
			builder.Delete(start, start+len(prefix))
		case !strings.HasPrefix(text[start:], prefix):
			builder.Insert(start, prefix)
		}
	}

	return buf.Dispatch(textbuf.Transaction{Edits: builder.Edits})
}

// ReplacePlaceholder replaces the first occurrence of token with
// replacement. It reports whether the token was found.
func (c *Controller) ReplacePlaceholder(token, replacement string) (bool, error) {
	buf := c.buffer()
	if buf == nil || token == "" {
		return false, nil
	}

	idx := strings.Index(buf.Text(), token)
	if idx < 0 {
		return false, nil
	}

	err := buf.Dispatch(textbuf.Transaction{
		Edits: []textbuf.TextEdit{{Start: idx, End: idx + len(token), NewText: replacement}},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// LineAt returns the bounds of the line containing pos.
func LineAt(text string, pos int) (int, int) {
	pos = max(0, min(pos, len(text)))

	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := strings.IndexByte(text[pos:], '\n')
	if end < 0 {
		return start, len(text)
	}
	return start, pos + end
}

// lineStarts returns the start offsets of every line intersecting
// [from, to].
func lineStarts(text string, from, to int) []int {
	first, _ := LineAt(text, from)
	starts := []int{first}

	for pos := first; ; {
		next := strings.IndexByte(text[pos:], '\n')
		if next < 0 {
			break
		}
		pos += next + 1
		if pos > to {
			break
		}
		starts = append(starts, pos)
	}

	return starts
}
