package pretty_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdnote/internal/ui/pretty"
	"github.com/yaklabco/mdnote/pkg/linediff"
	"github.com/yaklabco/mdnote/pkg/markdown"
	"github.com/yaklabco/mdnote/pkg/sandbox"
)

func TestFormatSideBySide(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	rows := linediff.Text("a\nold", "a\nnew")

	got := styles.FormatSideBySide(rows, 23)

	want := "  a" + strings.Repeat(" ", 7) + " │ " + "  a\n" +
		"- old" + strings.Repeat(" ", 5) + " │ " + "+ new\n"
	assert.Equal(t, want, got)
}

func TestFormatSideBySide_Truncates(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	rows := linediff.Text("", "abcdefghijklmnop")

	got := styles.FormatSideBySide(rows, 23)
	assert.True(t, strings.HasSuffix(got, " │ + abcdefgh\n"), got)
}

func TestFormatUnified(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	diff := linediff.NewUnified("note.md", []byte("a\nb\n"), []byte("a\nc\n"))
	got := styles.FormatUnified(diff)

	assert.Contains(t, got, "--- a/note.md\n")
	assert.Contains(t, got, "-b\n")
	assert.Contains(t, got, "+c\n")
	assert.Empty(t, styles.FormatUnified(nil))
}

func TestFormatDiffSummary(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	assert.Equal(t, "+1, -2", styles.FormatDiffSummary(linediff.Text("a\nb\nc", "a\nd")))
	assert.Equal(t, "no changes", styles.FormatDiffSummary(linediff.Text("same", "same")))
}

func TestFormatHeadings(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	headings := []markdown.Heading{
		{Level: 1, Text: "Intro", ID: "intro"},
		{Level: 3, Text: "Deep", ID: "deep"},
	}

	assert.Equal(t, "# Intro #intro\n    ### Deep #deep\n", styles.FormatHeadings(headings))
}

func TestFormatRun(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	assert.Equal(t, "oops", styles.FormatRunLine(sandbox.Line{Stream: sandbox.Stderr, Text: "oops"}))

	tests := []struct {
		name string
		res  sandbox.Result
		want string
	}{
		{name: "ok", res: sandbox.Result{}, want: "✓ block 1"},
		{name: "exit", res: sandbox.Result{ExitCode: 2}, want: "✗ block 1 exited with 2"},
		{name: "error", res: sandbox.Result{Err: errors.New("timeout"), ExitCode: -1}, want: "✗ block 1: timeout"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, styles.FormatRunResult("block 1", testCase.res))
		})
	}
}
