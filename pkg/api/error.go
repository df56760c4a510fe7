package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrNotFound matches an *Error with status 404.
	ErrNotFound = errors.New("api: not found")

	// ErrUnauthorized matches an *Error with status 401 or 403.
	ErrUnauthorized = errors.New("api: unauthorized")
)

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Is lets errors.Is compare an *Error against ErrNotFound and
// ErrUnauthorized.
func (e *Error) Is(target error) bool {
	switch {
	case errors.Is(target, ErrNotFound):
		return e.Status == http.StatusNotFound
	case errors.Is(target, ErrUnauthorized):
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	default:
		return false
	}
}

// newError reads the message of a failed response. JSON bodies with an
// "error" or "message" field use that field; other bodies are used as is.
func newError(resp *http.Response) *Error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	body := strings.TrimSpace(string(data))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		switch {
		case payload.Error != "":
			body = payload.Error
		case payload.Message != "":
			body = payload.Message
		}
	}

	return &Error{Status: resp.StatusCode, Message: body}
}
