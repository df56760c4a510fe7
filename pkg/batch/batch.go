package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/fsutil"
	"github.com/yaklabco/mdnote/pkg/render"
)

// Renderer renders many notes with one projector.
type Renderer struct {
	Projector *render.Projector
	Logger    *log.Logger
}

// New creates a Renderer.
func New(projector *render.Projector) *Renderer {
	return &Renderer{Projector: projector, Logger: logging.Default()}
}

// Run discovers the notes opts selects and renders them with a pool of
// workers. Outputs whose HTML did not change are left untouched.
func (r *Renderer) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("batch render: output directory is required")
	}

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range workCh {
				outcome := r.renderFile(ctx, path, OutputPath(workDir, opts.OutputDir, path), opts.ResolveDiagrams)
				select {
				case <-ctx.Done():
					return
				case outCh <- outcome:
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch render cancelled: %w", err)
	}
	return result, nil
}

func (r *Renderer) renderFile(ctx context.Context, path, output string, resolveDiagrams bool) FileOutcome {
	outcome := FileOutcome{Path: path, Output: output}

	src, err := os.ReadFile(path)
	if err != nil {
		outcome.Error = fmt.Errorf("read %s: %w", path, err)
		return outcome
	}

	doc, err := r.Projector.Render(ctx, string(src))
	if err != nil {
		outcome.Error = fmt.Errorf("render %s: %w", path, err)
		return outcome
	}
	if resolveDiagrams {
		if err := doc.ResolveDiagrams(ctx); err != nil {
			outcome.Error = err
			return outcome
		}
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		outcome.Error = fmt.Errorf("create output directory: %w", err)
		return outcome
	}
	outcome.Written, outcome.Error = fsutil.WriteAtomicIfChanged(ctx, output, []byte(doc.HTML()), 0)

	if r.Logger != nil && outcome.Error == nil {
		r.Logger.Debug("rendered note",
			logging.FieldInput, path,
			logging.FieldOutput, output,
			"written", outcome.Written,
		)
	}
	return outcome
}

// OutputPath maps a note to its HTML file under outDir. Notes outside
// workDir are placed at the top of outDir.
func OutputPath(workDir, outDir, path string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(path)
	}
	return filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".html")
}
