package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mdnote"

// ConfigPaths holds the config files found for one load. Empty fields mean
// no file exists at that level.
type ConfigPaths struct {
	System   string
	User     string
	Project  string
	Explicit string
}

// ProjectConfigFiles are the names looked for in each directory of the
// upward project search, most preferred first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ProjectConfigFiles = []string{
	".mdnote.yml",
	".mdnote.yaml",
	"mdnote.yml",
	"mdnote.yaml",
}

// levelConfigFiles are the names used in the system and user directories.
//
//nolint:gochecknoglobals // Read-only lookup table.
var levelConfigFiles = []string{"config.yaml", "config.yml"}

// repositoryMarkers end the upward search: a notes repository owns its config.
//
//nolint:gochecknoglobals // Read-only lookup table.
var repositoryMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths locates the system, user and project config files for
// workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstFile(SystemConfigDir(), levelConfigFiles),
		User:    firstFile(UserConfigDir(), levelConfigFiles),
		Project: project,
	}, nil
}

// SystemConfigDir is /etc/mdnote, or %ProgramData%\mdnote on Windows.
func SystemConfigDir() string {
	if runtime.GOOS != "windows" {
		return filepath.Join("/etc", appName)
	}
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return filepath.Join(programData, appName)
}

// UserConfigDir returns $XDG_CONFIG_HOME/mdnote, falling back to
// ~/.config/mdnote. It returns "" when no home directory is known.
func UserConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName)
}

// FindProjectConfig walks up from startDir and returns the first project
// config file it finds. The walk ends without a result at a repository
// root, the home directory or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}

	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}

		if found := firstFile(dir, ProjectConfigFiles); found != "" {
			return found, nil
		}

		parent := filepath.Dir(dir)
		if isRepositoryRoot(dir) || dir == home || parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

func isRepositoryRoot(dir string) bool {
	for _, marker := range repositoryMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
