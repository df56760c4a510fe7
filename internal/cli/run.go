package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdnote/internal/configloader"
	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/internal/ui/pretty"
	"github.com/yaklabco/mdnote/pkg/config"
	"github.com/yaklabco/mdnote/pkg/render"
	"github.com/yaklabco/mdnote/pkg/sandbox"
)

type runFlags struct {
	block   int
	list    bool
	timeout time.Duration
}

func newRunCommand(global *globalFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run the runnable code blocks of a note",
		Long: `Run fenced code blocks marked [runnable] with the local toolchain and
stream their output. Blocks are numbered from 1 in document order. Exits
with status 1 when any block fails.

Examples:
  mdnote run note.md            Run every runnable block
  mdnote run note.md --block 2  Run only the second block
  mdnote run note.md --list     List runnable blocks without running them`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().IntVarP(&flags.block, "block", "b", 0, "run only block N")
	cmd.Flags().BoolVarP(&flags.list, "list", "l", false, "list runnable blocks")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "limit each run (default from config)")

	return cmd
}

// runnableBlock is a sandbox node with its 1-based position.
type runnableBlock struct {
	index int
	attrs *render.SandboxAttrs
}

func (b runnableBlock) label() string {
	return fmt.Sprintf("block %d (%s)", b.index, b.attrs.Language)
}

func runBlocks(cmd *cobra.Command, global *globalFlags, flags *runFlags, path string) error {
	overrides := &config.Config{Sandbox: config.SandboxConfig{Timeout: flags.timeout}}
	loaded, err := loadConfig(cmd, global, overrides)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	src, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	doc, err := newProjector(cfg, false).Render(ctx, src)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	nodes := render.FindAll(doc.Root, render.KindSandbox)
	blocks := make([]runnableBlock, 0, len(nodes))
	for i, node := range nodes {
		blocks = append(blocks, runnableBlock{index: i + 1, attrs: node.Sandbox})
	}

	styles := newStyles(cmd, global)
	out := cmd.OutOrStdout()

	if len(blocks) == 0 {
		_, err := fmt.Fprintln(out, styles.Dim.Render("no runnable code blocks"))
		return err
	}

	if flags.list {
		for _, block := range blocks {
			if _, err := fmt.Fprintf(out, "%s %s\n", styles.Bold.Render(block.label()),
				styles.Dim.Render(block.attrs.Filename)); err != nil {
				return err
			}
		}
		return nil
	}

	if flags.block != 0 {
		if flags.block < 1 || flags.block > len(blocks) {
			return fmt.Errorf("block %d out of range: %s has %d runnable blocks", flags.block, path, len(blocks))
		}
		blocks = blocks[flags.block-1 : flags.block]
	}

	runner := sandbox.NewExecRunner(configloader.SandboxRegistry(cfg), cfg.Sandbox.Timeout)
	runner.Logger = logging.Default()

	failed := 0
	for _, block := range blocks {
		if _, err := fmt.Fprintln(out, styles.Section.Render("▶ "+block.label())); err != nil {
			return err
		}

		var res sandbox.Result
		events, err := runner.Run(ctx, block.attrs.Source, block.attrs.Language)
		if err != nil {
			res = sandbox.Result{Err: err, ExitCode: -1}
		} else {
			res = streamRun(out, styles, events)
		}

		if _, err := fmt.Fprintln(out, styles.FormatRunResult(block.label(), res)); err != nil {
			return err
		}
		if res.Err != nil || res.ExitCode != 0 {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRunFailed, failed, len(blocks))
	}
	return nil
}

// streamRun prints output lines as they arrive and returns the collected
// result once the run ends.
func streamRun(out io.Writer, styles *pretty.Styles, events <-chan sandbox.Event) sandbox.Result {
	tee := make(chan sandbox.Event)
	go func() {
		defer close(tee)
		for ev := range events {
			if ev.Kind == sandbox.EventLine {
				_, _ = fmt.Fprintln(out, styles.FormatRunLine(ev.Line))
			}
			tee <- ev
		}
	}()
	return sandbox.Collect(tee)
}
