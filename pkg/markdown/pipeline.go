// Package markdown prepares editor source for rendering: it extracts and
// slugs headings, builds and injects the table of contents, normalizes math
// delimiters, expands admonition blocks and escapes unsupported HTML.
//
// Every function is total and deterministic. Fenced code regions (lines
// between ``` delimiters) are never rewritten.
package markdown

// Result is the output of Process.
type Result struct {
	// Text is the transformed markdown, ready for the renderer.
	Text string

	// Headings are the source headings with unique IDs.
	Headings []Heading

	// TOC is the generated table-of-contents markdown.
	TOC string
}

// Process runs the full transform in a fixed order: extract headings, assign
// slugs, build the TOC, inject it, normalize math, convert admonitions and
// escape unsupported HTML.
func Process(src string) Result {
	headings := AssignSlugs(ExtractHeadings(src))
	toc := BuildTOC(headings)

	text := InjectTOC(src, toc)
	text = NormalizeMath(text)
	text = ConvertAdmonitions(text)
	text = EscapeUnsupportedHTML(text)

	return Result{
		Text:     text,
		Headings: headings,
		TOC:      toc,
	}
}
