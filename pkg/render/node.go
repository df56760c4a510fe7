// Package render projects processed markdown into a tree of typed nodes for
// the preview pane and serializes that tree to HTML.
package render

import "strings"

// NodeKind classifies a render node.
type NodeKind uint8

// Node kinds.
const (
	KindDocument NodeKind = iota
	KindGeneric
	KindText
	KindRawHTML
	KindHeading
	KindCodeBlock
	KindSandbox
	KindMermaid
	KindToc
	KindStyledSpan
	KindMedia
	KindTable
)

var kindNames = [...]string{
	KindDocument:   "Document",
	KindGeneric:    "Generic",
	KindText:       "Text",
	KindRawHTML:    "RawHTML",
	KindHeading:    "Heading",
	KindCodeBlock:  "CodeBlock",
	KindSandbox:    "Sandbox",
	KindMermaid:    "Mermaid",
	KindToc:        "Toc",
	KindStyledSpan: "StyledSpan",
	KindMedia:      "Media",
	KindTable:      "Table",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Attr is an HTML attribute on a generic element.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of the render tree. Exactly one attribute struct is
// set for the typed kinds.
type Node struct {
	Kind NodeKind

	// Tag is the HTML element name for KindGeneric.
	Tag   string
	Attrs []Attr

	// Text holds the content of KindText and the markup of KindRawHTML.
	Text string

	Children []*Node

	Heading *HeadingAttrs
	Code    *CodeAttrs
	Sandbox *SandboxAttrs
	Mermaid *MermaidAttrs
	Toc     *TocAttrs
	Style   *StyleAttrs
	Media   *MediaAttrs
	Table   *TableAttrs
}

// HeadingAttrs holds heading details.
type HeadingAttrs struct {
	Level int
	ID    string
}

// CodeAttrs holds a highlighted code block.
type CodeAttrs struct {
	Language string
	Filename string
	Meta     string
	Source   string

	// HTML is the highlighted markup, empty when no lexer matched.
	HTML string

	// Guessed is set when Language was inferred from the content.
	Guessed bool
}

// SandboxAttrs holds a runnable code block.
type SandboxAttrs struct {
	Language string
	Filename string
	Source   string
}

// MermaidAttrs holds a diagram and its rendered markup.
type MermaidAttrs struct {
	Source string
	SVG    string
	Err    error
}

// TocEntry is one line of a table of contents.
type TocEntry struct {
	Level int
	Text  string
	Href  string
}

// TocAttrs holds a parsed table of contents.
type TocAttrs struct {
	Entries []TocEntry
}

// StyleAttrs holds the sanitized style of an inline element.
type StyleAttrs struct {
	Color    string
	FontSize string
}

// CSS returns the style as a CSS declaration list.
func (s StyleAttrs) CSS() string {
	var parts []string
	if s.Color != "" {
		parts = append(parts, "color: "+s.Color)
	}
	if s.FontSize != "" {
		parts = append(parts, "font-size: "+s.FontSize)
	}
	return strings.Join(parts, "; ")
}

// MediaKind is the element used for an embedded file.
type MediaKind string

// Media kinds.
const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// MediaAttrs holds an embedded image, video or audio file.
type MediaAttrs struct {
	Kind     MediaKind
	URL      string
	Caption  string
	Filename string
	Title    string
}

// Alignment is a table column alignment.
type Alignment string

// Alignments.
const (
	AlignNone   Alignment = ""
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// TableAttrs holds column alignments. Children are "tr" rows; the first row
// is the header.
type TableAttrs struct {
	Alignments []Alignment
}

// Append adds children to n.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Attr returns the value of a generic attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// PlainText returns the concatenated text of n and its descendants.
func (n *Node) PlainText() string {
	var buf strings.Builder
	_ = Walk(n, func(node *Node) error {
		if node.Kind == KindText {
			buf.WriteString(node.Text)
		}
		return nil
	})
	return buf.String()
}

// WalkFunc is called for each node. A non-nil error stops the walk.
type WalkFunc func(n *Node) error

// Walk visits root and its descendants in pre-order.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	if err := fn(root); err != nil {
		return err
	}
	for _, child := range root.Children {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// FindAll returns every node of the given kind in pre-order.
func FindAll(root *Node, kind NodeKind) []*Node {
	var out []*Node
	_ = Walk(root, func(n *Node) error {
		if n.Kind == kind {
			out = append(out, n)
		}
		return nil
	})
	return out
}

func newGeneric(tag string, attrs ...Attr) *Node {
	return &Node{Kind: KindGeneric, Tag: tag, Attrs: attrs}
}

func newText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}
