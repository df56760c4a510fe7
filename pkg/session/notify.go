package session

import (
	"errors"
	"fmt"
)

// ErrDocumentUnavailable is returned by Open when the document does not
// exist or the user may not see it. The view cannot continue.
var ErrDocumentUnavailable = errors.New("document unavailable")

// ValidationError is a request rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Level is the severity of a notification.
type Level int

// Notification levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

// Notify calls f.
func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Level, string) {}
