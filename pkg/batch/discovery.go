package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Discover returns the absolute paths of the notes opts selects, sorted.
// Hidden files and directories are skipped while walking.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	walker := &walker{opts: opts, workDir: workDir, extensions: opts.extensions(), seen: make(map[string]bool)}

	for _, input := range opts.paths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := input
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			if walker.matches(absPath) {
				walker.add(absPath)
			}
			continue
		}
		if err := walker.walk(ctx, absPath); err != nil {
			return nil, err
		}
	}

	slices.Sort(walker.files)
	return walker.files, nil
}

func resolveWorkDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return abs, nil
}

type walker struct {
	opts       Options
	workDir    string
	extensions []string
	seen       map[string]bool
	files      []string
}

func (w *walker) add(path string) {
	if !w.seen[path] {
		w.seen[path] = true
		w.files = append(w.files, path)
	}
}

func (w *walker) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")

		if entry.IsDir() {
			if hidden || w.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil //nolint:nilerr // broken links are skipped
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // unreadable targets are skipped
			}
			if info.IsDir() {
				if !w.opts.FollowSymlinks {
					return nil
				}
				return w.walk(ctx, target)
			}
		}

		if w.matches(path) {
			w.add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	return nil
}

func (w *walker) relative(path string) string {
	rel, err := filepath.Rel(w.workDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *walker) excluded(path string) bool {
	rel := w.relative(path)
	for _, pattern := range w.opts.ExcludeGlobs {
		if MatchGlob(rel, pattern) {
			return true
		}
	}
	return false
}

func (w *walker) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.ContainsFunc(w.extensions, func(e string) bool { return strings.ToLower(e) == ext }) {
		return false
	}
	return !w.excluded(path)
}

// MatchGlob matches a slash-separated relative path against pattern.
// A pattern without a slash also matches the base name. "dir/**" matches
// everything under dir and "**/name" matches name at any depth.
func MatchGlob(rel, pattern string) bool {
	pattern = filepath.ToSlash(pattern)

	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if prefix == "**" || prefix == "" {
			return true
		}
		return rel == prefix || strings.HasPrefix(rel, prefix+"/")
	}

	if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
		segments := strings.Split(rel, "/")
		for i := range segments {
			if matched, _ := path.Match(suffix, strings.Join(segments[i:], "/")); matched {
				return true
			}
		}
		return false
	}

	if pattern == "**" {
		return true
	}
	if matched, _ := path.Match(pattern, rel); matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		matched, _ := path.Match(pattern, path.Base(rel))
		return matched
	}
	return false
}
