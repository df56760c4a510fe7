package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single mermaid-cli invocation.
const DefaultTimeout = 15 * time.Second

// CommandRenderer renders diagrams with mermaid-cli. The source is written
// to stdin and the SVG read from stdout.
type CommandRenderer struct {
	// Command is the executable, "mmdc" by default.
	Command string

	// Args are passed before any extra arguments.
	Args []string

	Timeout time.Duration
}

// NewCommandRenderer creates a renderer for the mmdc binary.
func NewCommandRenderer(command string, timeout time.Duration) *CommandRenderer {
	if command == "" {
		command = "mmdc"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandRenderer{
		Command: command,
		Args:    []string{"--quiet", "--input", "-", "--output", "-", "--outputFormat", "svg"},
		Timeout: timeout,
	}
}

// Available reports whether the command can be found in PATH.
func (r *CommandRenderer) Available() bool {
	_, err := exec.LookPath(r.Command)
	return err == nil
}

// Render implements Renderer.
func (r *CommandRenderer) Render(ctx context.Context, source string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // The command comes from configuration.
	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s timed out after %s", r.Command, timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("running %s: %w", r.Command, err)
		}
		return "", fmt.Errorf("running %s: %w: %s", r.Command, err, msg)
	}

	svg := strings.TrimSpace(stdout.String())
	if !strings.Contains(svg, "<svg") {
		return "", fmt.Errorf("%s produced no svg output", r.Command)
	}
	return svg, nil
}
