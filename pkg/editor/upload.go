package editor

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// UploadResult describes an uploaded file.
type UploadResult struct {
	URL         string
	Name        string
	ContentType string
}

// MediaMarkdown returns the markdown that embeds an uploaded file. Images,
// video and audio use the alt-text prefixes understood by the renderer;
// anything else becomes a plain link.
func MediaMarkdown(res UploadResult) string {
	switch {
	case strings.HasPrefix(res.ContentType, "image/"):
		return "![PIC:" + res.Name + "](" + res.URL + ")"
	case strings.HasPrefix(res.ContentType, "video/"):
		return "![VIDEO:" + res.Name + "](" + res.URL + ")"
	case strings.HasPrefix(res.ContentType, "audio/"):
		return "![AUDIO:" + res.Name + "](" + res.URL + ")"
	default:
		return "[" + res.Name + "](" + res.URL + ")"
	}
}

// Uploads tracks placeholders inserted while files upload.
type Uploads struct {
	ctrl     *Controller
	newToken func() string

	mu      sync.Mutex
	pending map[string]string
}

// NewUploads creates an upload tracker for ctrl.
func NewUploads(ctrl *Controller) *Uploads {
	return &Uploads{
		ctrl:     ctrl,
		newToken: uuid.NewString,
		pending:  make(map[string]string),
	}
}

// Begin inserts a placeholder for fileName at the cursor and returns its
// token.
func (u *Uploads) Begin(fileName string) (string, error) {
	token := u.newToken()
	placeholder := "![Uploading " + fileName + "…](upload:" + token + ")"

	if err := u.ctrl.InsertAtCursor(placeholder); err != nil {
		return "", err
	}

	u.mu.Lock()
	u.pending[token] = placeholder
	u.mu.Unlock()

	return token, nil
}

// Complete swaps the placeholder for the embed markdown. It reports whether
// the placeholder was still in the document.
func (u *Uploads) Complete(token string, res UploadResult) (bool, error) {
	return u.finish(token, MediaMarkdown(res))
}

// Fail removes the placeholder.
func (u *Uploads) Fail(token string) (bool, error) {
	return u.finish(token, "")
}

// Pending returns the number of uploads still in flight.
func (u *Uploads) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

func (u *Uploads) finish(token, replacement string) (bool, error) {
	u.mu.Lock()
	placeholder, ok := u.pending[token]
	delete(u.pending, token)
	u.mu.Unlock()

	if !ok {
		return false, nil
	}
	return u.ctrl.ReplacePlaceholder(placeholder, replacement)
}
