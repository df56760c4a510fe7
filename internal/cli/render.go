package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/batch"
	"github.com/yaklabco/mdnote/pkg/config"
	"github.com/yaklabco/mdnote/pkg/fsutil"
	"github.com/yaklabco/mdnote/pkg/markdown"
)

type renderFlags struct {
	output          string
	resolveDiagrams bool
	highlightStyle  string
	exclude         []string
	jobs            int
}

func newRenderCommand(global *globalFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render FILE|DIR",
		Short: "Render markdown notes to HTML",
		Long: `Render a markdown note to an HTML fragment, the same markup the editor
preview shows. Use "-" to read from standard input.

Given a directory, every note under it is rendered concurrently into the
directory named by -o, mirroring the source layout. Unchanged outputs are
not rewritten.

Examples:
  mdnote render note.md                       Print HTML to stdout
  mdnote render note.md -o note.html          Write HTML to a file
  mdnote render notes/ -o site/               Render a whole tree
  mdnote render note.md --resolve-diagrams    Render mermaid blocks with mmdc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write HTML to this file instead of stdout")
	cmd.Flags().BoolVar(&flags.resolveDiagrams, "resolve-diagrams", false, "render mermaid diagrams to SVG")
	cmd.Flags().StringVar(&flags.highlightStyle, "style", "", "chroma style for code highlighting")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob of notes to skip when rendering a directory")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "parallel renders for a directory (0 = number of CPUs)")

	return cmd
}

func runRender(cmd *cobra.Command, global *globalFlags, flags *renderFlags, path string) error {
	overrides := &config.Config{Render: config.RenderConfig{HighlightStyle: flags.highlightStyle}}
	loaded, err := loadConfig(cmd, global, overrides)
	if err != nil {
		return err
	}

	if path != stdinPath {
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return runRenderTree(cmd, loaded.Config, flags, path)
		}
	}

	src, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	html, err := renderHTML(cmd, loaded.Config, src, flags.resolveDiagrams)
	if err != nil {
		return err
	}

	if flags.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), html)
		return err
	}

	if err := fsutil.WriteAtomic(commandContext(cmd), flags.output, []byte(html), 0); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logging.Default().Info("rendered", logging.FieldInput, path, logging.FieldOutput, flags.output)
	return nil
}

func runRenderTree(cmd *cobra.Command, cfg *config.Config, flags *renderFlags, dir string) error {
	if flags.output == "" {
		return errors.New("rendering a directory requires --output")
	}

	renderer := batch.New(newProjector(cfg, flags.resolveDiagrams))
	result, err := renderer.Run(commandContext(cmd), batch.Options{
		WorkingDir:      dir,
		OutputDir:       flags.output,
		ExcludeGlobs:    flags.exclude,
		Jobs:            flags.jobs,
		ResolveDiagrams: flags.resolveDiagrams,
	})
	if err != nil {
		return err
	}

	logger := logging.Default()
	for _, file := range result.Files {
		if file.Error != nil {
			logger.Error("render failed", logging.FieldPath, file.Path, logging.FieldError, file.Error)
		}
	}

	stats := result.Stats
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d notes: %d rendered, %d unchanged, %d failed\n",
		stats.FilesDiscovered, stats.FilesRendered, stats.FilesUnchanged, stats.FilesErrored)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%w: %d notes failed to render", ErrRunFailed, stats.FilesErrored)
	}
	return nil
}

func renderHTML(cmd *cobra.Command, cfg *config.Config, src string, resolveDiagrams bool) (string, error) {
	ctx := commandContext(cmd)

	doc, err := newProjector(cfg, resolveDiagrams).Render(ctx, src)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	if resolveDiagrams {
		if err := doc.ResolveDiagrams(ctx); err != nil {
			return "", err
		}
	}
	return doc.HTML(), nil
}

func newTOCCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toc FILE",
		Short: "Print a table of contents for a note",
		Long: `Print the markdown table of contents the editor injects at a [TOC]
marker. Links use the same unique heading ids as the rendered HTML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			headings := markdown.AssignSlugs(markdown.ExtractHeadings(src))
			if toc := markdown.BuildTOC(headings); toc != "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), toc)
			}
			return err
		},
	}
}

func newHeadingsCommand(global *globalFlags) *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "headings FILE",
		Short: "List the headings of a note with their anchors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			styles := newStyles(cmd, global)
			out := cmd.OutOrStdout()
			headings := markdown.AssignSlugs(markdown.ExtractHeadings(src))
			if _, err := fmt.Fprint(out, styles.FormatHeadings(headings)); err != nil {
				return err
			}
			if stats {
				_, err = fmt.Fprintln(out, styles.FormatStats(markdown.Stats(src)))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "also print word, character and line counts")

	return cmd
}
