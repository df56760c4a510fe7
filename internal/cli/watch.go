package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/config"
	"github.com/yaklabco/mdnote/pkg/debounce"
	"github.com/yaklabco/mdnote/pkg/fsutil"
)

type watchFlags struct {
	output          string
	delay           time.Duration
	resolveDiagrams bool
}

func newWatchCommand(global *globalFlags) *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-render a note to HTML whenever it changes",
		Long: `Render a note to an HTML file, then watch the note and render again after
each save. Bursts of writes are coalesced by the preview delay. Stop with
Ctrl-C.

Examples:
  mdnote watch note.md -o note.html
  mdnote watch note.md -o note.html --delay 100ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "HTML file to keep up to date")
	cmd.Flags().DurationVar(&flags.delay, "delay", 0, "wait this long after the last change (default editor.preview_delay)")
	cmd.Flags().BoolVar(&flags.resolveDiagrams, "resolve-diagrams", false, "render mermaid diagrams to SVG")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runWatch(cmd *cobra.Command, global *globalFlags, flags *watchFlags, path string) error {
	overrides := &config.Config{Editor: config.EditorConfig{PreviewDelay: flags.delay}}
	loaded, err := loadConfig(cmd, global, overrides)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	source, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	ctx := commandContext(cmd)
	logger := logging.Default().With(logging.FieldInput, path, logging.FieldOutput, flags.output)

	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()

		src, err := readSource(cmd, source)
		if err != nil {
			logger.Error("read failed", logging.FieldError, err)
			return
		}
		html, err := renderHTML(cmd, cfg, src, flags.resolveDiagrams)
		if err != nil {
			logger.Error("render failed", logging.FieldError, err)
			return
		}
		wrote, err := fsutil.WriteAtomicIfChanged(ctx, flags.output, []byte(html), 0)
		if err != nil {
			logger.Error("write failed", logging.FieldError, err)
			return
		}
		if wrote {
			logger.Info("rendered", logging.FieldBytes, len(html))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often save by renaming a temp file over
	// the original, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(source)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(source), err)
	}

	rebuild()
	logger.Info("watching for changes")

	debouncer := debounce.New(nil, cfg.Editor.PreviewDelay)
	defer debouncer.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != source {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug("source changed", "op", event.Op.String())
				debouncer.Trigger(rebuild)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.FieldError, err)
		}
	}
}
