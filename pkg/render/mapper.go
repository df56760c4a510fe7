package render

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdnote/pkg/markdown"
)

// mapper converts a goldmark AST into a render tree.
type mapper struct {
	content     []byte
	highlighter *highlighter
	runnable    map[string]bool

	// headings are the pipeline headings, consumed in order.
	headings []markdown.Heading
	next     int
	slugger  *markdown.Slugger
}

func newMapper(content []byte, p *Projector, headings []markdown.Heading) *mapper {
	slugger := markdown.NewSlugger()
	for _, h := range headings {
		slugger.Reserve(h.ID)
	}
	return &mapper{
		content:     content,
		highlighter: p.highlighter,
		runnable:    p.runnable,
		headings:    headings,
		slugger:     slugger,
	}
}

func (m *mapper) mapDocument(doc ast.Node) *Node {
	root := &Node{Kind: KindDocument}
	root.Append(m.mapChildren(doc)...)
	return root
}

func (m *mapper) mapChildren(parent ast.Node) []*Node {
	return m.mapSiblings(parent.FirstChild(), nil)
}

// mapSiblings maps from first up to, but not including, stop. Inline
// <span> and <font> tags are paired with their closing tag and become
// styled spans around the nodes between them.
func (m *mapper) mapSiblings(first, stop ast.Node) []*Node {
	var out []*Node
	for child := first; child != nil && child != stop; child = child.NextSibling() {
		raw, ok := child.(*ast.RawHTML)
		if !ok {
			out = append(out, m.mapNode(child)...)
			continue
		}

		markup := m.rawHTML(raw)
		if name, style, isStyle := parseStyleTag(markup); isStyle {
			if end := findClose(m.content, child, name); end != nil {
				span := &Node{Kind: KindStyledSpan, Style: &style}
				span.Append(m.mapSiblings(child.NextSibling(), end)...)
				out = append(out, span)
				child = end
				continue
			}
		}
		out = append(out, &Node{Kind: KindRawHTML, Text: SanitizeHTML(markup)})
	}
	return out
}

// findClose returns the sibling closing the tag opened at open.
func findClose(content []byte, open ast.Node, name string) ast.Node {
	depth := 1
	for sib := open.NextSibling(); sib != nil; sib = sib.NextSibling() {
		raw, ok := sib.(*ast.RawHTML)
		if !ok {
			continue
		}
		markup := rawHTMLValue(raw, content)
		if opened, _, isStyle := parseStyleTag(markup); isStyle && opened == name {
			depth++
			continue
		}
		if closed, isClose := closingTagName(markup); isClose && closed == name {
			depth--
			if depth == 0 {
				return sib
			}
		}
	}
	return nil
}

func (m *mapper) mapNode(gmNode ast.Node) []*Node {
	var node *Node

	switch gmn := gmNode.(type) {
	// Block-level nodes.
	case *ast.Heading:
		node = m.mapHeading(gmn)

	case *ast.Paragraph, *ast.TextBlock:
		if _, tight := gmNode.(*ast.TextBlock); tight {
			return m.mapChildren(gmNode)
		}
		node = newGeneric("p")
		node.Append(m.mapChildren(gmNode)...)

	case *ast.List:
		node = m.mapList(gmn)

	case *ast.ListItem:
		node = newGeneric("li")
		node.Append(m.mapChildren(gmNode)...)

	case *ast.Blockquote:
		node = newGeneric("blockquote")
		node.Append(m.mapChildren(gmNode)...)

	case *ast.FencedCodeBlock:
		node = m.mapFencedCodeBlock(gmn)

	case *ast.CodeBlock:
		node = &Node{Kind: KindCodeBlock, Code: &CodeAttrs{Source: m.blockText(gmn)}}

	case *ast.ThematicBreak:
		node = newGeneric("hr")

	case *ast.HTMLBlock:
		node = &Node{Kind: KindRawHTML, Text: SanitizeHTML(m.htmlBlock(gmn))}

	// Inline-level nodes.
	case *ast.Text:
		return m.mapText(gmn)

	case *ast.String:
		return []*Node{newText(string(gmn.Value))}

	case *ast.Emphasis:
		tag := "em"
		if gmn.Level == 2 {
			tag = "strong"
		}
		node = newGeneric(tag)
		node.Append(m.mapChildren(gmNode)...)

	case *ast.CodeSpan:
		node = newGeneric("code")
		node.Append(newText(m.codeSpanText(gmn)))

	case *ast.Link:
		node = newGeneric("a", linkAttrs(string(gmn.Destination), string(gmn.Title))...)
		node.Append(m.mapChildren(gmNode)...)

	case *ast.AutoLink:
		dest := string(gmn.URL(m.content))
		if gmn.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(dest), "mailto:") {
			dest = "mailto:" + dest
		}
		node = newGeneric("a", linkAttrs(dest, "")...)
		node.Append(newText(string(gmn.Label(m.content))))

	case *ast.Image:
		node = m.mapImage(gmn)

	case *ast.RawHTML:
		node = &Node{Kind: KindRawHTML, Text: SanitizeHTML(m.rawHTML(gmn))}

	// GFM extension nodes.
	case *east.Strikethrough:
		node = newGeneric("del")
		node.Append(m.mapChildren(gmNode)...)

	case *east.TaskCheckBox:
		attrs := []Attr{{Name: "type", Value: "checkbox"}, {Name: "disabled"}}
		if gmn.IsChecked {
			attrs = append(attrs, Attr{Name: "checked"})
		}
		node = newGeneric("input", attrs...)

	case *east.Table:
		node = m.mapTable(gmn)

	default:
		// Unknown nodes contribute their children.
		return m.mapChildren(gmNode)
	}

	return []*Node{node}
}

func (m *mapper) mapHeading(h *ast.Heading) *Node {
	children := m.mapChildren(h)
	node := &Node{Kind: KindHeading, Children: children}

	text := (&Node{Children: children}).PlainText()
	node.Heading = &HeadingAttrs{Level: h.Level, ID: m.headingID(h.Level, text)}
	return node
}

// headingID takes the next pipeline heading with the same level and text.
// Headings the pipeline did not see get a fresh unique slug.
func (m *mapper) headingID(level int, text string) string {
	key := markdown.Slugify(text)
	for idx := m.next; idx < len(m.headings); idx++ {
		h := m.headings[idx]
		if h.Level != level {
			continue
		}
		if h.Text == text || markdown.Slugify(h.Text) == key {
			m.next = idx + 1
			return h.ID
		}
	}
	return m.slugger.Slug(text)
}

func (m *mapper) mapList(list *ast.List) *Node {
	if !list.IsOrdered() {
		node := newGeneric("ul")
		node.Append(m.mapChildren(list)...)
		return node
	}

	node := newGeneric("ol")
	if list.Start != 1 {
		node.Attrs = append(node.Attrs, Attr{Name: "start", Value: strconv.Itoa(list.Start)})
	}
	node.Append(m.mapChildren(list)...)
	return node
}

func (m *mapper) mapFencedCodeBlock(codeBlock *ast.FencedCodeBlock) *Node {
	info := ""
	if codeBlock.Info != nil {
		info = string(codeBlock.Info.Segment.Value(m.content))
	}
	fence := ParseFenceInfo(info)
	source := m.blockText(codeBlock)

	switch {
	case fence.Language == "mermaid":
		return &Node{Kind: KindMermaid, Mermaid: &MermaidAttrs{Source: source}}
	case fence.Language == markdown.TOCFenceLang:
		return &Node{Kind: KindToc, Toc: &TocAttrs{Entries: ParseTOC(source)}}
	case fence.Runnable && m.runnable[fence.Language]:
		return &Node{Kind: KindSandbox, Sandbox: &SandboxAttrs{
			Language: fence.Language,
			Filename: fence.Filename,
			Source:   source,
		}}
	}

	lang, guessed := resolveLanguage(fence, source)
	return &Node{Kind: KindCodeBlock, Code: &CodeAttrs{
		Language: lang,
		Filename: fence.Filename,
		Meta:     fence.Meta,
		Source:   source,
		HTML:     m.highlighter.Highlight(source, lang),
		Guessed:  guessed,
	}}
}

func (m *mapper) mapText(textNode *ast.Text) []*Node {
	value := textNode.Segment.Value(m.content)
	if !textNode.IsRaw() {
		value = util.UnescapePunctuations(value)
		value = util.ResolveNumericReferences(value)
		value = util.ResolveEntityNames(value)
	}

	nodes := []*Node{newText(string(value))}
	switch {
	case textNode.HardLineBreak():
		nodes = append(nodes, newGeneric("br"))
	case textNode.SoftLineBreak():
		nodes = append(nodes, newText("\n"))
	}
	return nodes
}

func (m *mapper) codeSpanText(codeSpan *ast.CodeSpan) string {
	var buf strings.Builder
	for child := codeSpan.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(m.content))
		case *ast.String:
			buf.Write(c.Value)
		}
	}
	return buf.String()
}

func (m *mapper) mapImage(img *ast.Image) *Node {
	alt := (&Node{Children: m.mapChildren(img)}).PlainText()
	media := ParseMedia(alt, string(img.Destination), string(img.Title))
	if markdown.IsUnsafeAttributes(media.URL) {
		media.URL = ""
	}
	return &Node{Kind: KindMedia, Media: &media}
}

func (m *mapper) mapTable(table *east.Table) *Node {
	aligns := make([]Alignment, len(table.Alignments))
	for idx, align := range table.Alignments {
		aligns[idx] = convertAlignment(align)
	}
	node := &Node{Kind: KindTable, Table: &TableAttrs{Alignments: aligns}}

	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		cellTag := "td"
		if _, header := row.(*east.TableHeader); header {
			cellTag = "th"
		}

		tr := newGeneric("tr")
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			td := newGeneric(cellTag)
			if tc, ok := cell.(*east.TableCell); ok {
				if align := convertAlignment(tc.Alignment); align != AlignNone {
					td.Attrs = append(td.Attrs, Attr{Name: "align", Value: string(align)})
				}
			}
			td.Append(m.mapChildren(cell)...)
			tr.Append(td)
		}
		node.Append(tr)
	}
	return node
}

func convertAlignment(align east.Alignment) Alignment {
	switch align {
	case east.AlignLeft:
		return AlignLeft
	case east.AlignCenter:
		return AlignCenter
	case east.AlignRight:
		return AlignRight
	default:
		return AlignNone
	}
}

func linkAttrs(dest, title string) []Attr {
	if markdown.IsUnsafeAttributes(dest) {
		dest = ""
	}
	attrs := []Attr{{Name: "href", Value: dest}}
	if title != "" {
		attrs = append(attrs, Attr{Name: "title", Value: title})
	}
	return attrs
}

func (m *mapper) blockText(node ast.Node) string {
	var buf strings.Builder
	lines := node.Lines()
	for idx := range lines.Len() {
		seg := lines.At(idx)
		buf.Write(seg.Value(m.content))
	}
	return buf.String()
}

func (m *mapper) htmlBlock(block *ast.HTMLBlock) string {
	text := m.blockText(block)
	if block.HasClosure() {
		text += string(block.ClosureLine.Value(m.content))
	}
	return text
}

func (m *mapper) rawHTML(raw *ast.RawHTML) string {
	return rawHTMLValue(raw, m.content)
}

func rawHTMLValue(raw *ast.RawHTML, content []byte) string {
	var buf strings.Builder
	for idx := range raw.Segments.Len() {
		seg := raw.Segments.At(idx)
		buf.Write(seg.Value(content))
	}
	return buf.String()
}
