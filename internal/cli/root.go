// Package cli provides the Cobra command structure for mdnote.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
}

// NewRootCommand creates the root mdnote command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "mdnote",
		Short: "Render, diff and run markdown notes",
		Long: `mdnote is the command-line face of the mdnote editor core.

It renders notes to HTML with the same pipeline the editor preview uses:
slugged headings, generated tables of contents, admonitions, highlighted
code, mermaid diagrams and runnable code blocks. It can also diff two
versions of a note, run a note's code blocks, re-render on save, and move
notes to and from a document server.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto",
		"colorize output: auto, always, never")
	// Command lookup strips flags before cobra adds --help, and an unknown
	// --help would swallow the next argument ("--help --color never").
	rootCmd.InitDefaultHelpFlag()

	rootCmd.AddCommand(
		newRenderCommand(flags),
		newTOCCommand(),
		newHeadingsCommand(flags),
		newDiffCommand(flags),
		newRunCommand(flags),
		newWatchCommand(flags),
		newPullCommand(flags),
		newPushCommand(flags),
		newConfigCommand(flags),
		newInitCommand(),
		newVersionCommand(info),
	)

	NewHelpFormatter(flags.color, os.Stdout).ApplyToCommand(rootCmd)

	return rootCmd
}
