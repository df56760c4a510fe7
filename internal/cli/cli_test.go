package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/internal/cli"
	"github.com/yaklabco/mdnote/pkg/config"
)

func buildInfo() cli.BuildInfo {
	return cli.BuildInfo{Version: "test-version", Commit: "abc123", Date: "2026-01-01"}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	return executeContext(context.Background(), t, stdin, args...)
}

func executeContext(ctx context.Context, t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(buildInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(append(args, "--color=never"))

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeConfig writes an explicit config file so tests do not depend on the
// machine's user config.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	return writeFile(t, t.TempDir(), "mdnote.yml", content)
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(buildInfo())
	require.NotNil(t, cmd)
	assert.Equal(t, "mdnote", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{
		"render", "toc", "headings", "diff", "run", "watch",
		"pull", "push", "config", "init", "version",
	} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: cli.ExitSuccess},
		{name: "differences", err: fmt.Errorf("wrapped: %w", cli.ErrDifferences), want: cli.ExitFailure},
		{name: "run failed", err: cli.ErrRunFailed, want: cli.ExitFailure},
		{name: "config", err: fmt.Errorf("%w: bad", cli.ErrConfig), want: cli.ExitConfigError},
		{name: "missing file", err: fmt.Errorf("read: %w", fs.ErrNotExist), want: cli.ExitIOError},
		{name: "other", err: errors.New("boom"), want: cli.ExitError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, cli.ExitCode(testCase.err))
		})
	}

	assert.True(t, cli.IsResultError(cli.ErrDifferences))
	assert.False(t, cli.IsResultError(cli.ErrConfig))
}

func TestHelp(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "render")
	assert.Contains(t, out, "--config")
}

func TestHelp_SeparateFlagValues(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "editor:\n  max_tags: 10\n")

	tests := []struct {
		name string
		args []string
	}{
		{"color after help", []string{"--help", "--color", "never"}},
		{"config after help", []string{"--help", "--config", cfgPath}},
		{"help last", []string{"--color", "never", "--help"}},
		{"subcommand help", []string{"render", "--help", "--color", "never"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(buildInfo())
			var stdout bytes.Buffer
			cmd.SetOut(&stdout)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(testCase.args)

			err := cmd.ExecuteContext(context.Background())
			require.NoError(t, err)
			assert.Equal(t, cli.ExitSuccess, cli.ExitCode(err))
			assert.Contains(t, stdout.String(), "Usage:")
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "version")
	require.NoError(t, err)

	assert.Contains(t, out, "test-version")
	assert.Contains(t, out, "abc123")
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".mdnote.yml")

	_, err := execute(t, "", "init", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = config.FromYAML(data)
	require.NoError(t, err, "template must be valid YAML")

	_, err = execute(t, "", "init", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "", "init", "-o", path, "--force", "--full", "--server", "https://notes.example.com")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "https://notes.example.com", cfg.API.BaseURL)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "render:\n  highlight_style: monokai\n")

	out, err := execute(t, "", "config", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from:")
	assert.Contains(t, out, cfgPath)
	assert.Contains(t, out, "highlight_style: monokai")

	out, err = execute(t, "", "config", "--env")
	require.NoError(t, err)
	assert.Contains(t, out, "MDNOTE_API_BASE_URL")
	assert.Contains(t, out, "MDNOTE_DRAFTS_STORE")
}

func TestConfigCommand_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "drafts:\n  store: redis\n")

	_, err := execute(t, "", "config", "--config", cfgPath)
	require.ErrorIs(t, err, cli.ErrConfig)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}
