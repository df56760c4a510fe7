package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdnote/pkg/diagram"
)

//nolint:gochecknoglobals // Read-only lookup table.
var voidTags = map[string]bool{"br": true, "hr": true, "img": true, "input": true}

// HTML serializes the document.
func (d *Document) HTML() string {
	var buf bytes.Buffer
	writeNode(&buf, d.Root)
	return buf.String()
}

// WriteHTML writes the serialized document to w.
func (d *Document) WriteHTML(w io.Writer) error {
	var buf bytes.Buffer
	writeNode(&buf, d.Root)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing html: %w", err)
	}
	return nil
}

func escape(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

func writeChildren(buf *bytes.Buffer, n *Node) {
	for _, child := range n.Children {
		writeNode(buf, child)
	}
}

func writeAttrs(buf *bytes.Buffer, attrs []Attr) {
	for _, attr := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(attr.Name)
		if attr.Value != "" || attr.Name == "href" || attr.Name == "src" || attr.Name == "alt" {
			buf.WriteString(`="`)
			buf.WriteString(escape(attr.Value))
			buf.WriteByte('"')
		}
	}
}

func writeNode(buf *bytes.Buffer, n *Node) {
	switch n.Kind {
	case KindDocument:
		writeChildren(buf, n)

	case KindText:
		buf.WriteString(escape(n.Text))

	case KindRawHTML:
		buf.WriteString(n.Text)

	case KindGeneric:
		buf.WriteByte('<')
		buf.WriteString(n.Tag)
		writeAttrs(buf, n.Attrs)
		buf.WriteByte('>')
		if voidTags[n.Tag] {
			return
		}
		writeChildren(buf, n)
		buf.WriteString("</" + n.Tag + ">")

	case KindHeading:
		tag := "h" + strconv.Itoa(n.Heading.Level)
		buf.WriteString("<" + tag + ` id="` + escape(n.Heading.ID) + `">`)
		writeChildren(buf, n)
		buf.WriteString("</" + tag + ">\n")

	case KindCodeBlock:
		writeCodeBlock(buf, n.Code)

	case KindSandbox:
		s := n.Sandbox
		buf.WriteString(`<div class="sandbox" data-lang="` + escape(s.Language) + `"`)
		if s.Filename != "" {
			buf.WriteString(` data-filename="` + escape(s.Filename) + `"`)
		}
		buf.WriteString(`><pre><code class="language-` + escape(s.Language) + `">`)
		buf.WriteString(escape(s.Source))
		buf.WriteString(`</code></pre><button type="button" class="sandbox-run">Run</button>`)
		buf.WriteString(`<pre class="sandbox-output"></pre></div>` + "\n")

	case KindMermaid:
		writeMermaid(buf, n.Mermaid)

	case KindToc:
		writeToc(buf, n.Toc)

	case KindStyledSpan:
		if css := n.Style.CSS(); css != "" {
			buf.WriteString(`<span style="` + escape(css) + `">`)
		} else {
			buf.WriteString("<span>")
		}
		writeChildren(buf, n)
		buf.WriteString("</span>")

	case KindMedia:
		writeMedia(buf, n.Media)

	case KindTable:
		writeTable(buf, n)
	}
}

func writeCodeBlock(buf *bytes.Buffer, c *CodeAttrs) {
	buf.WriteString(`<div class="code-block"`)
	if c.Language != "" {
		buf.WriteString(` data-lang="` + escape(c.Language) + `"`)
	}
	buf.WriteByte('>')
	if c.Filename != "" {
		buf.WriteString(`<div class="code-filename">` + escape(c.Filename) + `</div>`)
	}
	buf.WriteString(`<button type="button" class="code-copy">Copy</button>`)
	if c.HTML != "" {
		buf.WriteString(c.HTML)
	} else {
		buf.WriteString("<pre><code")
		if c.Language != "" {
			buf.WriteString(` class="language-` + escape(c.Language) + `"`)
		}
		buf.WriteByte('>')
		buf.WriteString(escape(c.Source))
		buf.WriteString("</code></pre>")
	}
	buf.WriteString("</div>\n")
}

func writeMermaid(buf *bytes.Buffer, m *MermaidAttrs) {
	switch {
	case m.SVG != "":
		buf.WriteString(`<div class="mermaid">` + m.SVG + "</div>\n")
	case diagram.IsSyntaxError(m.Err):
		buf.WriteString(`<div class="mermaid mermaid-error">` + InvalidDiagramText + "</div>\n")
	case m.Err != nil:
		buf.WriteString(`<div class="mermaid mermaid-unavailable">` + DiagramUnavailableText + "</div>\n")
	default:
		buf.WriteString(`<pre class="mermaid">` + escape(m.Source) + "</pre>\n")
	}
}

func writeToc(buf *bytes.Buffer, t *TocAttrs) {
	buf.WriteString(`<nav class="toc"><ul>`)
	for _, entry := range t.Entries {
		buf.WriteString(`<li class="toc-level-` + strconv.Itoa(entry.Level) + `">`)
		buf.WriteString(`<a href="` + escape(entry.Href) + `">` + escape(entry.Text) + "</a></li>")
	}
	buf.WriteString("</ul></nav>\n")
}

func writeMedia(buf *bytes.Buffer, m *MediaAttrs) {
	label := m.Caption
	if label == "" {
		label = m.Filename
	}

	switch m.Kind {
	case MediaVideo:
		buf.WriteString(`<video controls src="` + escape(m.URL) + `" title="` + escape(label) + `"></video>`)
	case MediaAudio:
		buf.WriteString(`<audio controls src="` + escape(m.URL) + `" title="` + escape(label) + `"></audio>`)
	default:
		buf.WriteString(`<img src="` + escape(m.URL) + `" alt="` + escape(label) + `"`)
		if m.Title != "" {
			buf.WriteString(` title="` + escape(m.Title) + `"`)
		}
		buf.WriteByte('>')
	}
}

func writeTable(buf *bytes.Buffer, n *Node) {
	buf.WriteString("<table>")
	for idx, row := range n.Children {
		switch idx {
		case 0:
			buf.WriteString("<thead>")
		case 1:
			buf.WriteString("<tbody>")
		}
		writeNode(buf, row)
		if idx == 0 {
			buf.WriteString("</thead>")
		}
	}
	if len(n.Children) > 1 {
		buf.WriteString("</tbody>")
	}
	buf.WriteString("</table>\n")
}
