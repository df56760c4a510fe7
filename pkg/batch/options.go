// Package batch renders a tree of markdown notes to HTML files concurrently.
package batch

// Options controls a batch render.
type Options struct {
	// Paths are files or directories to render. Empty means the working
	// directory.
	Paths []string

	// WorkingDir resolves relative Paths and is the root that output paths
	// mirror. Empty means the process working directory.
	WorkingDir string

	// OutputDir receives one .html file per note, at the note's path
	// relative to WorkingDir.
	OutputDir string

	// Extensions are the lowercase note extensions, with leading dot.
	// Defaults to DefaultExtensions.
	Extensions []string

	// ExcludeGlobs skip matching files and directories, relative to
	// WorkingDir. "drafts/**" and "**/archive" forms are supported.
	ExcludeGlobs []string

	// FollowSymlinks walks into symlinked directories.
	FollowSymlinks bool

	// Jobs bounds concurrent renders; 0 or negative means runtime.NumCPU.
	Jobs int

	// ResolveDiagrams renders mermaid blocks before writing.
	ResolveDiagrams bool
}

// DefaultExtensions returns the extensions treated as notes.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) paths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
