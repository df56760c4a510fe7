package linediff

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// Unified is a unified diff between two versions of a document.
type Unified struct {
	// Path labels the --- and +++ headers.
	Path string

	Hunks []Hunk

	Additions int
	Deletions int
}

// Hunk is a contiguous block of changes with surrounding context.
type Hunk struct {
	// OldStart and NewStart are 1-based line numbers.
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	Lines []HunkLine
}

// HunkLine is a single line within a hunk.
type HunkLine struct {
	Kind    Kind
	Content string
}

// NewUnified builds a unified diff of before and after. It returns nil when
// the contents are identical.
func NewUnified(path string, before, after []byte) *Unified {
	oldLines := splitLines(before)
	newLines := splitLines(after)

	ops := script(oldLines, newLines)
	hunks := groupIntoHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	diff := &Unified{Path: path, Hunks: hunks}
	for _, op := range ops {
		switch op.kind {
		case Added:
			diff.Additions++
		case Removed:
			diff.Deletions++
		}
	}

	return diff
}

// HasChanges reports whether the diff contains any hunk.
func (d *Unified) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// String renders the diff in unified format.
func (d *Unified) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var builder strings.Builder
	fmt.Fprintf(&builder, "--- a/%s\n", path)
	fmt.Fprintf(&builder, "+++ b/%s\n", path)

	for _, hunk := range d.Hunks {
		builder.WriteString(hunk.Header())
		builder.WriteByte('\n')

		for _, line := range hunk.Lines {
			builder.WriteString(line.Prefix())
			builder.WriteString(line.Content)
			builder.WriteByte('\n')
		}
	}

	return builder.String()
}

// Header returns the "@@ -a,b +c,d @@" line for the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Prefix returns the unified-diff marker for the line.
func (l HunkLine) Prefix() string {
	switch l.Kind {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return " "
	}
}

// splitLines splits content into lines, dropping the empty element produced
// by a trailing newline.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	lines := strings.Split(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

type changeRange struct {
	start, end int
}

// groupIntoHunks merges nearby change runs and expands them with context.
func groupIntoHunks(ops []op) []Hunk {
	var ranges []changeRange
	inChange := false
	rangeStart := 0

	for idx, op := range ops {
		isChange := op.kind != Same
		if isChange && !inChange {
			rangeStart = idx
			inChange = true
		} else if !isChange && inChange {
			ranges = append(ranges, changeRange{rangeStart, idx})
			inChange = false
		}
	}
	if inChange {
		ranges = append(ranges, changeRange{rangeStart, len(ops)})
	}

	var hunks []Hunk
	for rangeIdx := 0; rangeIdx < len(ranges); {
		mergeEnd := rangeIdx + 1
		for mergeEnd < len(ranges) && ranges[mergeEnd].start-ranges[mergeEnd-1].end <= contextLines*2 {
			mergeEnd++
		}

		hunks = append(hunks, buildHunk(ops, ranges[rangeIdx].start, ranges[mergeEnd-1].end))
		rangeIdx = mergeEnd
	}

	return hunks
}

func buildHunk(ops []op, changeStart, changeEnd int) Hunk {
	start := max(changeStart-contextLines, 0)
	end := min(changeEnd+contextLines, len(ops))

	hunk := Hunk{OldStart: 1, NewStart: 1}
	for _, op := range ops[:start] {
		if op.kind != Added {
			hunk.OldStart++
		}
		if op.kind != Removed {
			hunk.NewStart++
		}
	}

	for _, op := range ops[start:end] {
		hunk.Lines = append(hunk.Lines, HunkLine{Kind: op.kind, Content: op.value})

		switch op.kind {
		case Same:
			hunk.OldCount++
			hunk.NewCount++
		case Removed:
			hunk.OldCount++
		case Added:
			hunk.NewCount++
		}
	}

	return hunk
}
