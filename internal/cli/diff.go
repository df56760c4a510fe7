package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/ui/pretty"
	"github.com/yaklabco/mdnote/pkg/linediff"
)

type diffFlags struct {
	sideBySide bool
	width      int
}

func newDiffCommand(global *globalFlags) *cobra.Command {
	flags := &diffFlags{}

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two versions of a note line by line",
		Long: `Compare two versions of a note with the line diff the editor uses for
AI polish and version revert. Exits with status 1 when the inputs differ.

Examples:
  mdnote diff old.md new.md                 Unified diff
  mdnote diff old.md new.md --side-by-side  Two-column view`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, global, flags, args[0], args[1])
		},
	}

	cmd.Flags().BoolVarP(&flags.sideBySide, "side-by-side", "y", false, "show the versions in two columns")
	cmd.Flags().IntVarP(&flags.width, "width", "W", 0, "total width of the side-by-side view (default: terminal width)")

	return cmd
}

func runDiff(cmd *cobra.Command, global *globalFlags, flags *diffFlags, oldPath, newPath string) error {
	before, err := readSource(cmd, oldPath)
	if err != nil {
		return err
	}
	after, err := readSource(cmd, newPath)
	if err != nil {
		return err
	}

	styles := newStyles(cmd, global)
	out := cmd.OutOrStdout()

	rows := linediff.Text(before, after)
	if !linediff.HasChanges(rows) {
		_, err := fmt.Fprintln(out, styles.FormatDiffSummary(rows))
		return err
	}

	if flags.sideBySide {
		width := flags.width
		if width <= 0 {
			width = pretty.TerminalWidth(out)
		}
		_, err = fmt.Fprint(out, styles.FormatSideBySide(rows, width))
	} else {
		_, err = fmt.Fprint(out, styles.FormatUnified(linediff.NewUnified(newPath, []byte(before), []byte(after))))
	}
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out, styles.FormatDiffSummary(rows)); err != nil {
		return err
	}
	return ErrDifferences
}
