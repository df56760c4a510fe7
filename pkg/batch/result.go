package batch

// FileOutcome is the result of rendering one note.
type FileOutcome struct {
	// Path is the absolute note path.
	Path string

	// Output is the HTML file written for the note.
	Output string

	// Written is false when the output already held the same HTML.
	Written bool

	// Error is set when the note could not be read, rendered or written.
	Error error
}

// Stats counts outcomes across a run.
type Stats struct {
	FilesDiscovered int
	FilesRendered   int
	FilesUnchanged  int
	FilesErrored    int
}

// Result is the outcome of a batch render. Files follow discovery order.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// HasFailures reports whether any note failed to render.
func (r *Result) HasFailures() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
	case outcome.Written:
		r.Stats.FilesRendered++
	default:
		r.Stats.FilesUnchanged++
	}
}
