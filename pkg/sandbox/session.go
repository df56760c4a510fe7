package sandbox

import (
	"context"
	"sync"
)

// Session owns at most one run at a time for a code block. Starting a new
// run cancels the previous one.
type Session struct {
	runner Runner

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewSession creates a Session backed by runner.
func NewSession(runner Runner) *Session {
	return &Session{runner: runner}
}

// Start cancels any current run and starts code. The returned channel stops
// delivering when a later Start or Stop supersedes this run.
func (s *Session) Start(ctx context.Context, code, language string) (<-chan Event, error) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	events, err := s.runner.Run(runCtx, code, language)
	if err != nil {
		s.finish(gen)
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer s.finish(gen)
		for ev := range events {
			select {
			case out <- ev:
			case <-runCtx.Done():
				for range events {
				}
				return
			}
		}
	}()
	return out, nil
}

// Running reports whether a run is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Stop cancels the current run, if any.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Result is the collected output of a finished run.
type Result struct {
	Lines    []Line
	ExitCode int
	Err      error
}

// Collect drains events into a Result.
func Collect(events <-chan Event) Result {
	var res Result
	for ev := range events {
		switch ev.Kind {
		case EventLine:
			res.Lines = append(res.Lines, ev.Line)
		case EventError:
			res.Err = ev.Err
			res.ExitCode = -1
		case EventDone:
			res.ExitCode = ev.ExitCode
		}
	}
	return res
}

// Output returns the text of lines from the given streams, joined by
// newlines. With no streams it uses stdout and stderr.
func (r Result) Output(streams ...Stream) string {
	if len(streams) == 0 {
		streams = []Stream{Stdout, Stderr}
	}

	var out []byte
	for _, line := range r.Lines {
		for _, stream := range streams {
			if line.Stream == stream {
				if len(out) > 0 {
					out = append(out, '\n')
				}
				out = append(out, line.Text...)
				break
			}
		}
	}
	return string(out)
}
