package sandbox

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdnote/internal/logging"
)

// DefaultTimeout bounds a single run.
const DefaultTimeout = 30 * time.Second

// Stream names the origin of an output line.
type Stream string

// Streams.
const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
	System Stream = "system"
)

// EventKind discriminates Event.
type EventKind int

// Event kinds.
const (
	EventLine EventKind = iota
	EventError
	EventDone
)

// Line is one line of output.
type Line struct {
	Stream Stream
	Text   string
}

// Event is emitted while a program runs. A run ends with exactly one
// EventDone or EventError, after which the channel is closed.
type Event struct {
	Kind     EventKind
	Line     Line
	Err      error
	ExitCode int
}

// Runner executes source code.
type Runner interface {
	Run(ctx context.Context, code, language string) (<-chan Event, error)
}

// ExecRunner runs code with local toolchains in a temporary directory.
type ExecRunner struct {
	Registry *Registry
	Timeout  time.Duration
	Env      []string
	Logger   *log.Logger
}

// NewExecRunner creates a runner for reg. A nil reg uses the default languages.
func NewExecRunner(reg *Registry, timeout time.Duration) *ExecRunner {
	if reg == nil {
		reg = NewRegistry()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Registry: reg, Timeout: timeout, Logger: logging.Default()}
}

// Run implements Runner. Setup failures are returned directly; anything
// after the process starts arrives on the channel.
func (r *ExecRunner) Run(ctx context.Context, code, language string) (<-chan Event, error) {
	lang, ok := r.Registry.Resolve(language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	if len(lang.Command) == 0 {
		return nil, fmt.Errorf("language %q has no command", lang.Name)
	}

	dir, err := os.MkdirTemp("", "mdnote-run-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, lang.FileName), []byte(code), 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("writing source: %w", err)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)

	//nolint:gosec // Commands come from the language registry.
	cmd := exec.CommandContext(runCtx, lang.Command[0], lang.Command[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("starting %s: %w", lang.Command[0], err)
	}

	events := make(chan Event, 64)
	send := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(events)
		defer func() { _ = os.RemoveAll(dir) }()
		defer cancel()

		started := time.Now()
		send(Event{Kind: EventLine, Line: Line{Stream: System, Text: "$ " + strings.Join(lang.Command, " ")}})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			scanLines(stdout, Stdout, send)
		}()
		go func() {
			defer wg.Done()
			scanLines(stderr, Stderr, send)
		}()
		wg.Wait()

		waitErr := cmd.Wait()
		logger := r.logger().With(logging.FieldLanguage, lang.Name, logging.FieldDuration, time.Since(started))

		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			logger.Debug("run timed out")
			send(Event{Kind: EventLine, Line: Line{Stream: System, Text: "timed out after " + timeout.String()}})
			send(Event{Kind: EventError, Err: fmt.Errorf("run timed out after %s: %w", timeout, context.DeadlineExceeded)})
		case ctx.Err() != nil:
			logger.Debug("run canceled")
			send(Event{Kind: EventError, Err: ctx.Err()})
		default:
			code := exitCode(waitErr)
			if code < 0 {
				send(Event{Kind: EventError, Err: fmt.Errorf("waiting for %s: %w", lang.Command[0], waitErr)})
				return
			}
			logger.Debug("run finished", logging.FieldExitCode, code)
			send(Event{Kind: EventLine, Line: Line{Stream: System, Text: fmt.Sprintf("exit status %d", code)}})
			send(Event{Kind: EventDone, ExitCode: code})
		}
	}()

	return events, nil
}

func (r *ExecRunner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.Default()
}

func scanLines(rd io.Reader, stream Stream, send func(Event)) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		send(Event{Kind: EventLine, Line: Line{Stream: stream, Text: scanner.Text()}})
	}
	// Drain whatever the scanner refused so the process never blocks on a
	// full pipe.
	_, _ = io.Copy(io.Discard, rd)
}

// exitCode returns the process exit code, or -1 when err is not an exit.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
