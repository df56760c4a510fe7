package cli

import (
	"errors"
	"io/fs"
)

// Exit codes for mdnote.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates the command ran but its result is negative:
	// the compared files differ or a code block failed.
	ExitFailure = 1

	// ExitError indicates the command could not complete.
	ExitError = 2

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrDifferences is returned by diff when the inputs differ.
	ErrDifferences = errors.New("inputs differ")

	// ErrRunFailed is returned when a code block or a note in a tree fails.
	ErrRunFailed = errors.New("run failed")

	// ErrConfig wraps configuration loading failures.
	ErrConfig = errors.New("invalid configuration")
)

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrDifferences), errors.Is(err, ErrRunFailed):
		return ExitFailure
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitError
	}
}

// IsResultError reports whether err only signals a negative result that the
// command has already printed.
func IsResultError(err error) bool {
	return errors.Is(err, ErrDifferences) || errors.Is(err, ErrRunFailed)
}
