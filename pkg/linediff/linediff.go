// Package linediff computes line-level differences between two texts using a
// longest-common-subsequence table and projects them into side-by-side rows.
package linediff

import "strings"

// Kind classifies one side of a diff row.
type Kind int

const (
	// Same is a line present, unchanged, on both sides.
	Same Kind = iota

	// Added is a line present only on the right (new) side.
	Added

	// Removed is a line present only on the left (old) side.
	Removed
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Same:
		return "same"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Cell is one side of a Row.
type Cell struct {
	Value string
	Kind  Kind
}

// Row is a single line of a side-by-side diff. Either side may be nil, but
// never both.
type Row struct {
	Left  *Cell
	Right *Cell
}

// op is a single edit-script step.
type op struct {
	kind  Kind
	value string
}

// Lines diffs two line slices and returns side-by-side rows.
//
// Collecting the Left values of the result in order reproduces a, and
// collecting the Right values reproduces b. When several alignments have the
// same LCS length, deletions are emitted before insertions.
func Lines(a, b []string) []Row {
	return pairRows(script(a, b))
}

// Text splits before and after on "\n" and diffs the lines. Joining the Left
// (or Right) values with "\n" reproduces before (or after) exactly.
func Text(before, after string) []Row {
	return Lines(strings.Split(before, "\n"), strings.Split(after, "\n"))
}

// Count returns the number of added and removed lines in rows.
func Count(rows []Row) (int, int) {
	var added, removed int
	for _, row := range rows {
		if row.Left != nil && row.Left.Kind == Removed {
			removed++
		}
		if row.Right != nil && row.Right.Kind == Added {
			added++
		}
	}
	return added, removed
}

// LeftValues returns the left-hand values of rows in order.
func LeftValues(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Left != nil {
			out = append(out, row.Left.Value)
		}
	}
	return out
}

// RightValues returns the right-hand values of rows in order.
func RightValues(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Right != nil {
			out = append(out, row.Right.Value)
		}
	}
	return out
}

// HasChanges reports whether any row is an addition or removal.
func HasChanges(rows []Row) bool {
	added, removed := Count(rows)
	return added+removed > 0
}

// lcsTable builds the suffix table where table[i][j] is the LCS length of
// a[i:] and b[j:].
func lcsTable(a, b []string) [][]int {
	table := make([][]int, len(a)+1)
	for idx := range table {
		table[idx] = make([]int, len(b)+1)
	}

	for row := len(a) - 1; row >= 0; row-- {
		for col := len(b) - 1; col >= 0; col-- {
			if a[row] == b[col] {
				table[row][col] = table[row+1][col+1] + 1
			} else {
				table[row][col] = max(table[row+1][col], table[row][col+1])
			}
		}
	}

	return table
}

// script walks the suffix table forward from (0,0) and emits an edit script.
func script(a, b []string) []op {
	table := lcsTable(a, b)
	ops := make([]op, 0, len(a)+len(b))

	row, col := 0, 0
	for row < len(a) && col < len(b) {
		switch {
		case a[row] == b[col]:
			ops = append(ops, op{kind: Same, value: a[row]})
			row++
			col++
		case table[row+1][col] >= table[row][col+1]:
			ops = append(ops, op{kind: Removed, value: a[row]})
			row++
		default:
			ops = append(ops, op{kind: Added, value: b[col]})
			col++
		}
	}
	for ; row < len(a); row++ {
		ops = append(ops, op{kind: Removed, value: a[row]})
	}
	for ; col < len(b); col++ {
		ops = append(ops, op{kind: Added, value: b[col]})
	}

	return ops
}

// pairRows turns an edit script into rows. A run of removals immediately
// followed by a run of additions is laid out side by side.
func pairRows(ops []op) []Row {
	rows := make([]Row, 0, len(ops))

	for idx := 0; idx < len(ops); {
		if ops[idx].kind == Same {
			value := ops[idx].value
			rows = append(rows, Row{
				Left:  &Cell{Value: value, Kind: Same},
				Right: &Cell{Value: value, Kind: Same},
			})
			idx++
			continue
		}

		removedEnd := idx
		for removedEnd < len(ops) && ops[removedEnd].kind == Removed {
			removedEnd++
		}
		addedEnd := removedEnd
		for addedEnd < len(ops) && ops[addedEnd].kind == Added {
			addedEnd++
		}

		removed := ops[idx:removedEnd]
		added := ops[removedEnd:addedEnd]
		for pos := range max(len(removed), len(added)) {
			var row Row
			if pos < len(removed) {
				row.Left = &Cell{Value: removed[pos].value, Kind: Removed}
			}
			if pos < len(added) {
				row.Right = &Cell{Value: added[pos].value, Kind: Added}
			}
			rows = append(rows, row)
		}

		idx = addedEnd
	}

	return rows
}
