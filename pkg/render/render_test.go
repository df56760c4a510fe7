package render_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/diagram"
	"github.com/yaklabco/mdnote/pkg/render"
)

func renderDoc(t *testing.T, src string, opts ...render.Option) *render.Document {
	t.Helper()

	doc, err := render.NewProjector(opts...).Render(context.Background(), src)
	require.NoError(t, err)
	return doc
}

func TestProject_HeadingIDsMatchPipeline(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "# Hello\n\n## Hello\n\n### Hello **world**\n\nSetext\n======\n")

	headings := render.FindAll(doc.Root, render.KindHeading)
	require.Len(t, headings, 4)

	ids := make([]string, 0, len(headings))
	for _, h := range headings {
		ids = append(ids, h.Heading.ID)
	}
	assert.Equal(t, []string{"hello", "hello-1", "hello-world", "setext"}, ids)
	assert.Equal(t, 3, headings[2].Heading.Level)
	assert.Equal(t, "Hello world", headings[2].PlainText())

	assert.True(t, doc.HasID("hello-1"))
	assert.Contains(t, doc.HTML(), `<h1 id="hello">Hello</h1>`)
}

func TestProject_CodeFences(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"```go:main.go [runnable]",
		"fmt.Println(1)",
		"```",
		"",
		"```python",
		"print(1)",
		"```",
		"",
		"```",
		"package main",
		"```",
		"",
		"```rust [runnable]",
		"fn main() {}",
		"```",
	}, "\n")

	doc := renderDoc(t, src)

	sandboxes := render.FindAll(doc.Root, render.KindSandbox)
	require.Len(t, sandboxes, 1)
	assert.Equal(t, render.SandboxAttrs{Language: "go", Filename: "main.go", Source: "fmt.Println(1)\n"}, *sandboxes[0].Sandbox)

	blocks := render.FindAll(doc.Root, render.KindCodeBlock)
	require.Len(t, blocks, 3)

	assert.Equal(t, "python", blocks[0].Code.Language)
	assert.Contains(t, blocks[0].Code.HTML, "<pre")
	assert.False(t, blocks[0].Code.Guessed)

	assert.Equal(t, "go", blocks[1].Code.Language)
	assert.True(t, blocks[1].Code.Guessed)

	assert.Equal(t, "rust", blocks[2].Code.Language, "rust is not runnable")

	html := doc.HTML()
	assert.Contains(t, html, `<div class="sandbox" data-lang="go" data-filename="main.go">`)
	assert.Contains(t, html, `class="code-copy"`)
}

func TestProject_RunnableLanguagesOption(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "```go [runnable]\nx\n```\n", render.WithRunnableLanguages("python"))

	assert.Empty(t, render.FindAll(doc.Root, render.KindSandbox))
	assert.Len(t, render.FindAll(doc.Root, render.KindCodeBlock), 1)
}

func TestProject_TocBlock(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "[toc]\n\n# A\n\n## B\n")

	tocs := render.FindAll(doc.Root, render.KindToc)
	require.Len(t, tocs, 1)
	assert.Equal(t, []render.TocEntry{
		{Level: 1, Text: "A", Href: "#a"},
		{Level: 2, Text: "B", Href: "#b"},
	}, tocs[0].Toc.Entries)
	assert.Contains(t, doc.HTML(), `<a href="#b">B</a>`)
}

func TestProject_StyledSpans(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, `Some <span style="color: red; background: blue">hot</span> and <font color="blue" size="7">big</font> text`)

	spans := render.FindAll(doc.Root, render.KindStyledSpan)
	require.Len(t, spans, 2)

	assert.Equal(t, render.StyleAttrs{Color: "red"}, *spans[0].Style)
	assert.Equal(t, "hot", spans[0].PlainText())
	assert.Equal(t, render.StyleAttrs{Color: "blue", FontSize: "48px"}, *spans[1].Style)

	html := doc.HTML()
	assert.Contains(t, html, `<span style="color: red">hot</span>`)
	assert.NotContains(t, html, "background")
}

func TestProject_Media(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "![VIDEO:clip](https://x.test/v/my%20clip.mp4)\n\n![](https://x.test/a/b.png)\n\n"+
		"![AUDIO:song](s.mp3)\n\n![photo](x/y%20z.png)\n")

	media := render.FindAll(doc.Root, render.KindMedia)
	require.Len(t, media, 4)

	assert.Equal(t, render.MediaVideo, media[0].Media.Kind)
	assert.Equal(t, "clip", media[0].Media.Caption)
	assert.Equal(t, "my clip.mp4", media[0].Media.Filename)

	assert.Equal(t, render.MediaImage, media[1].Media.Kind)
	assert.Equal(t, "b.png", media[1].Media.Filename)

	assert.Equal(t, render.MediaAudio, media[2].Media.Kind)

	assert.Equal(t, render.MediaImage, media[3].Media.Kind)
	assert.Equal(t, "y z.png", media[3].Media.Caption)
	assert.Equal(t, "y z.png", media[3].Media.Filename)

	html := doc.HTML()
	assert.Contains(t, html, `<video controls src="https://x.test/v/my%20clip.mp4" title="clip"></video>`)
	assert.Contains(t, html, `<img src="https://x.test/a/b.png" alt="b.png">`)
	assert.Contains(t, html, `<img src="x/y%20z.png" alt="y z.png">`)
}

func TestProject_Table(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "| a | b |\n|:--|--:|\n| 1 | 2 |\n")

	tables := render.FindAll(doc.Root, render.KindTable)
	require.Len(t, tables, 1)
	assert.Equal(t, []render.Alignment{render.AlignLeft, render.AlignRight}, tables[0].Table.Alignments)

	html := doc.HTML()
	assert.Contains(t, html, `<thead><tr><th align="left">a</th><th align="right">b</th></tr></thead>`)
	assert.Contains(t, html, `<tbody><tr><td align="left">1</td>`)
}

func TestProject_AdmonitionAndEscaping(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, ":::warning\nBe careful\n:::\n\na < b <script>x</script>\n")

	html := doc.HTML()
	assert.Contains(t, html, `<div class="md-alert md-alert-warning">`)
	assert.Contains(t, html, "<p>Be careful</p>")
	assert.Contains(t, html, "a &lt; b &lt;script&gt;x&lt;/script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestProject_UnsafeLinkDropped(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "[x](javascript:alert(1)) [y](https://ok.test)\n")

	html := doc.HTML()
	assert.Contains(t, html, `<a href="">x</a>`)
	assert.Contains(t, html, `<a href="https://ok.test">y</a>`)
}

func TestProject_TaskList(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "- [x] done\n- [ ] todo\n")

	html := doc.HTML()
	assert.Contains(t, html, `<input type="checkbox" disabled checked>`)
	assert.Contains(t, html, `<input type="checkbox" disabled>`)
}

func TestProject_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := render.NewProjector().Render(ctx, "# x")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDocument_ResolveDiagrams(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc := diagram.NewService(diagram.RendererFunc(func(_ context.Context, source string) (string, error) {
		calls.Add(1)
		if strings.Contains(source, "LR") {
			return "", errors.New("mmdc timed out")
		}
		return "<svg>ok</svg>", nil
	}))

	src := "```mermaid\ngraph TD\n```\n\n" +
		"```mermaid\nflowchart TD\n  A --> B\n  end\n```\n\n" +
		"```mermaid\ngraph LR\n  A --> B\n```\n"
	doc := renderDoc(t, src, render.WithDiagrams(svc))

	assert.Contains(t, doc.HTML(), `<pre class="mermaid">graph TD`+"\n</pre>")

	require.NoError(t, doc.ResolveDiagrams(context.Background()))

	nodes := doc.Diagrams()
	require.Len(t, nodes, 3)
	assert.Equal(t, "<svg>ok</svg>", nodes[0].Mermaid.SVG)
	require.NoError(t, nodes[0].Mermaid.Err)

	var syntaxErr *diagram.SyntaxError
	require.ErrorAs(t, nodes[1].Mermaid.Err, &syntaxErr)
	require.ErrorIs(t, nodes[2].Mermaid.Err, diagram.ErrRenderFailed)
	assert.False(t, diagram.IsSyntaxError(nodes[2].Mermaid.Err))
	assert.Equal(t, int32(2), calls.Load(), "the malformed flowchart never reaches the renderer")

	html := doc.HTML()
	assert.Contains(t, html, `<div class="mermaid"><svg>ok</svg></div>`)
	assert.Contains(t, html, `<div class="mermaid mermaid-error">`+render.InvalidDiagramText+"</div>")
	assert.Contains(t, html, `<div class="mermaid mermaid-unavailable">`+render.DiagramUnavailableText+"</div>")
	assert.Equal(t, 1, strings.Count(html, render.InvalidDiagramText))
}

func TestDocument_ResolveAnchor(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, "# Hello World\n\n# hello\n")

	tests := []struct {
		hash   string
		want   string
		wantOK bool
	}{
		{hash: "#hello-world", want: "hello-world", wantOK: true},
		{hash: "#Hello%20World", want: "hello-world", wantOK: true},
		{hash: "#ｈｅｌｌｏ", want: "hello", wantOK: true},
		{hash: "#missing", wantOK: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.hash, func(t *testing.T) {
			t.Parallel()

			got, ok := doc.ResolveAnchor(testCase.hash)
			assert.Equal(t, testCase.wantOK, ok)
			assert.Equal(t, testCase.want, got)
		})
	}
}
