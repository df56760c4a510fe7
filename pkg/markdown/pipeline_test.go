package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/markdown"
)

func TestProcess_UniqueSlugs(t *testing.T) {
	t.Parallel()

	result := markdown.Process("# A\n## A\n### A")

	require.Len(t, result.Headings, 3)
	assert.Equal(t, "a", result.Headings[0].ID)
	assert.Equal(t, "a-1", result.Headings[1].ID)
	assert.Equal(t, "a-2", result.Headings[2].ID)

	seen := make(map[string]bool)
	for _, heading := range result.Headings {
		assert.False(t, seen[heading.ID], "duplicate id %q", heading.ID)
		seen[heading.ID] = true
	}
}

func TestProcess_FencedRegionsAreUntouched(t *testing.T) {
	t.Parallel()

	src := "```js\n# not heading\n[toc]\n<script>x</script>\n:::warning\n\\(x\\)\n:::\n```"

	result := markdown.Process(src)

	assert.Empty(t, result.Headings)
	assert.Empty(t, result.TOC)
	assert.Equal(t, src, result.Text)
}

func TestProcess_InjectsTOC(t *testing.T) {
	t.Parallel()

	result := markdown.Process("# Intro\n## Setup\n[toc]")

	assert.Equal(t, "- [Intro](#intro)\n  - [Setup](#setup)", result.TOC)
	assert.Equal(t,
		"# Intro\n## Setup\n```toc\n- [Intro](#intro)\n  - [Setup](#setup)\n```",
		result.Text)
}

func TestProcess_EmptyTOCIsRemoved(t *testing.T) {
	t.Parallel()

	src := "hello\n[TOC]\nworld"

	first := markdown.Process(src)
	second := markdown.Process(src)

	assert.Equal(t, "hello\nworld", first.Text)
	assert.Equal(t, first, second)
}

func TestProcess_Admonition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "closed block",
			src:  "a\n:::warning\nb\nc\n:::\nd",
			want: "a\n<div class=\"md-alert md-alert-warning\">\n\nb\nc\n\n</div>\nd",
		},
		{
			name: "unterminated block",
			src:  "a\n:::warning\nb",
			want: "a\n:::warning\nb",
		},
		{
			name: "case insensitive opener",
			src:  ":::WARNING\nx\n:::",
			want: "<div class=\"md-alert md-alert-warning\">\n\nx\n\n</div>",
		},
		{
			name: "closer inside fence is ignored",
			src:  ":::warning\n```\n:::\n```\n:::",
			want: "<div class=\"md-alert md-alert-warning\">\n\n```\n:::\n```\n\n</div>",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, markdown.Process(testCase.src).Text)
		})
	}
}

func TestProcess_EscapesHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "script is escaped",
			src:  "<script>alert(1)</script>",
			want: "&lt;script&gt;alert(1)&lt;/script&gt;",
		},
		{
			name: "event handler stripped",
			src:  `<span onclick="x()">hi</span>`,
			want: "<span>hi</span>",
		},
		{
			name: "safe style kept",
			src:  `<span style="color:red">ok</span>`,
			want: `<span style="color:red">ok</span>`,
		},
		{
			name: "javascript uri on allowed tag",
			src:  `<div data-x="javascript:alert(1)">y</div>`,
			want: "<div>y</div>",
		},
		{
			name: "disallowed tag with uri",
			src:  `<a href="javascript:alert(1)">y</a>`,
			want: `&lt;a href="javascript:alert(1)"&gt;y&lt;/a&gt;`,
		},
		{
			name: "self closing",
			src:  "a<br/>b<img src=x />",
			want: "a<br/>b&lt;img src=x /&gt;",
		},
		{
			name: "self closing unsafe",
			src:  `<br onload="x" />`,
			want: "<br />",
		},
		{
			name: "autolink untouched",
			src:  "<https://example.com>",
			want: "<https://example.com>",
		},
		{
			name: "uppercase allowed tag",
			src:  "<U>under</U>",
			want: "<U>under</U>",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, markdown.EscapeUnsupportedHTML(testCase.src))
		})
	}
}

func TestNormalizeMath(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"see $a+b$ and $$x^2$$",
		markdown.NormalizeMath(`see \( a+b \) and \[ x^2 \]`))

	assert.Equal(t,
		"$$a$$",
		markdown.NormalizeMath("\\[\na\n\\]"))

	fenced := "```\n\\(keep\\)\n```"
	assert.Equal(t, fenced, markdown.NormalizeMath(fenced))

	assert.Equal(t, "$x$ then $y$", markdown.NormalizeMath(`\(x\) then \(y\)`))
}

func TestBuildTOC(t *testing.T) {
	t.Parallel()

	assert.Empty(t, markdown.BuildTOC(nil))

	toc := markdown.BuildTOC([]markdown.Heading{
		{Level: 2, Text: "B", ID: "b"},
		{Level: 1, Text: "A", ID: "a"},
		{Level: 3, Text: "C", ID: "c"},
	})
	assert.Equal(t, "- [B](#b)\n- [A](#a)\n  - [C](#c)", toc)
}

func TestInjectTOC_MultiplePlaceholders(t *testing.T) {
	t.Parallel()

	got := markdown.InjectTOC("[toc]\nx\n  [TOC]  ", "- [A](#a)")
	assert.Equal(t, "```toc\n- [A](#a)\n```\nx\n```toc\n- [A](#a)\n```", got)
}
