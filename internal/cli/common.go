package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/configloader"
	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/internal/ui/pretty"
	"github.com/yaklabco/mdnote/pkg/config"
	"github.com/yaklabco/mdnote/pkg/diagram"
	"github.com/yaklabco/mdnote/pkg/render"
)

// stdinPath makes a command read its source from standard input.
const stdinPath = "-"

// commandContext returns the command's context carrying the default logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logging.Default())
}

// loadConfig resolves the effective configuration for the working
// directory. overrides holds values set by command flags and may be nil.
func loadConfig(cmd *cobra.Command, flags *globalFlags, overrides *config.Config) (*configloader.LoadResult, error) {
	result, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		ExplicitPath: flags.configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	logger := logging.FromContext(commandContext(cmd))
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", "files", result.LoadedFrom)
	}

	return result, nil
}

func newStyles(cmd *cobra.Command, flags *globalFlags) *pretty.Styles {
	return pretty.NewStyles(pretty.IsColorEnabled(flags.color, cmd.OutOrStdout()))
}

// newProjector builds a projector from cfg. Diagrams are only wired when
// requested and the mermaid command is installed.
func newProjector(cfg *config.Config, withDiagrams bool) *render.Projector {
	logger := logging.Default()
	opts := []render.Option{
		render.WithHighlightStyle(cfg.Render.HighlightStyle),
		render.WithRunnableLanguages(cfg.Render.RunnableLanguages...),
		render.WithDiagramConcurrency(cfg.Render.DiagramConcurrency),
		render.WithLogger(logger),
	}

	if withDiagrams && cfg.Diagram.Command != "" {
		renderer := diagram.NewCommandRenderer(cfg.Diagram.Command, cfg.Diagram.Timeout)
		if renderer.Available() {
			opts = append(opts, render.WithDiagrams(diagram.NewService(renderer)))
		} else {
			logger.Warn("diagram command not found; diagrams are left unrendered", "command", cfg.Diagram.Command)
		}
	}

	return render.NewProjector(opts...)
}

// readSource reads a markdown file, or standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinPath {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
