package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/configloader"
	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/config"
	"github.com/yaklabco/mdnote/pkg/fsutil"
)

// configFilePermissions is the file mode for configuration files. They may
// hold an API token.
const configFilePermissions = 0o600

type initFlags struct {
	force   bool
	full    bool
	output  string
	baseURL string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a project configuration file",
		Long: `Create a .mdnote.yml configuration file in the current directory. mdnote
finds it from any subdirectory of the project.

Examples:
  mdnote init                                    Minimal commented template
  mdnote init --full                             Every setting with its default
  mdnote init --server https://notes.example.com Pre-fill the document server`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "write every setting with its default value")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ProjectConfigFiles[0], "output file path")
	cmd.Flags().StringVar(&flags.baseURL, "server", "", "document server base URL")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.Default()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	_, err = os.Stat(absPath)
	switch {
	case err == nil && !flags.force:
		return fmt.Errorf("file %q already exists; use --force to overwrite", flags.output)
	case err == nil:
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", flags.output, err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:    flags.full,
		BaseURL: flags.baseURL,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := fsutil.WriteAtomic(commandContext(cmd), absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	return nil
}
