package render_test

import (
	"context"
	"strings"
	"testing"

	"github.com/yaklabco/mdnote/pkg/render"
)

const benchNote = "# Release notes\n\n[TOC]\n\n## Overview\n\n" +
	"Some **bold** text with `code` and a [link](#overview).\n\n" +
	":::warning\nCheck the config before upgrading.\n:::\n\n" +
	"## Code\n\n```go\npackage main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n\n" +
	"| a | b |\n|---|---|\n| 1 | 2 |\n\n" +
	"Inline math \\(x^2\\) and <span style=\"color: red\">styled</span> text.\n"

// Benchmark the full pipeline and projection of a typical note.
func BenchmarkRender(b *testing.B) {
	projector := render.NewProjector()
	ctx := context.Background()
	src := strings.Repeat(benchNote, 20)

	b.ResetTimer()
	for range b.N {
		doc, err := projector.Render(ctx, src)
		if err != nil || doc == nil {
			b.Fail()
		}
	}
}

// Benchmark HTML serialization of a projected tree.
func BenchmarkHTML(b *testing.B) {
	doc, err := render.NewProjector().Render(context.Background(), strings.Repeat(benchNote, 20))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for range b.N {
		if doc.HTML() == "" {
			b.Fail()
		}
	}
}
