package pretty_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/internal/ui/pretty"
)

func TestNewStyles_ColorDisabled(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	require.NotNil(t, styles)

	for _, style := range []func(...string) string{
		styles.Bold.Render,
		styles.Failure.Render,
		styles.DiffAdd.Render,
		styles.Anchor.Render,
	} {
		assert.Equal(t, "test", style("test"))
	}
}

func TestNewStyles_ColorEnabled(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(true)
	require.NotNil(t, styles)
	assert.NotEmpty(t, styles.DiffRemove.Render("x"))
	assert.NotEmpty(t, styles.Command.Render("x"))
}

func TestIsColorEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.True(t, pretty.IsColorEnabled("always", &buf))
	assert.False(t, pretty.IsColorEnabled("never", os.Stdout))
	assert.False(t, pretty.IsColorEnabled("auto", &buf), "a buffer is not a TTY")
	assert.False(t, pretty.IsColorEnabled("", &buf))
}

//nolint:paralleltest // t.Setenv
func TestIsColorEnabled_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.False(t, pretty.IsColorEnabled("auto", os.Stdout))
	assert.True(t, pretty.IsColorEnabled("always", os.Stdout))
}

func TestTerminalWidth_NonTTY(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Equal(t, pretty.DefaultTermWidth, pretty.TerminalWidth(&buf))
}
