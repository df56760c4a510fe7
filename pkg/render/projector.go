package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdnote/internal/logging"
	"github.com/yaklabco/mdnote/pkg/diagram"
	"github.com/yaklabco/mdnote/pkg/markdown"
)

// DefaultDiagramConcurrency bounds parallel diagram renders per document.
const DefaultDiagramConcurrency = 4

const (
	// InvalidDiagramText is shown in place of a diagram whose source does not
	// parse.
	InvalidDiagramText = "Invalid syntax"

	// DiagramUnavailableText is shown when valid source could not be rendered,
	// for example because mmdc is missing or timed out.
	DiagramUnavailableText = "Diagram unavailable"
)

// Option configures a Projector.
type Option func(*Projector)

// WithDiagrams sets the diagram service used by Document.ResolveDiagrams.
func WithDiagrams(svc *diagram.Service) Option {
	return func(p *Projector) {
		p.diagrams = svc
	}
}

// WithHighlightStyle sets the chroma style name.
func WithHighlightStyle(name string) Option {
	return func(p *Projector) {
		p.styleName = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Projector) {
		p.logger = logger
	}
}

// WithRunnableLanguages replaces the fence tags that may become sandboxes.
func WithRunnableLanguages(langs ...string) Option {
	return func(p *Projector) {
		p.runnable = make(map[string]bool, len(langs))
		for _, lang := range langs {
			p.runnable[strings.ToLower(lang)] = true
		}
	}
}

// WithDiagramConcurrency bounds parallel diagram renders.
func WithDiagramConcurrency(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// Projector turns processed markdown into render documents. It is safe for
// concurrent use.
type Projector struct {
	md          goldmark.Markdown
	diagrams    *diagram.Service
	styleName   string
	highlighter *highlighter
	runnable    map[string]bool
	concurrency int
	logger      *log.Logger
}

// NewProjector creates a Projector.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{
		md:          goldmark.New(goldmark.WithExtensions(extension.GFM)),
		concurrency: DefaultDiagramConcurrency,
		logger:      logging.Default(),
	}
	WithRunnableLanguages(DefaultRunnableLanguages()...)(p)
	for _, opt := range opts {
		opt(p)
	}
	p.highlighter = newHighlighter(p.styleName)
	return p
}

// Project parses res.Text and builds the render tree. Heading ids come from
// res.Headings so they match the generated table of contents.
func (p *Projector) Project(ctx context.Context, res markdown.Result) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("project cancelled: %w", err)
	}

	content := []byte(res.Text)
	gmDoc := p.md.Parser().Parse(text.NewReader(content), parser.WithContext(parser.NewContext()))

	root := newMapper(content, p, res.Headings).mapDocument(gmDoc)

	doc := &Document{
		Root:        root,
		Result:      res,
		ids:         make(map[string]bool),
		diagrams:    p.diagrams,
		concurrency: p.concurrency,
		logger:      p.logger,
	}
	for _, heading := range FindAll(root, KindHeading) {
		doc.ids[heading.Heading.ID] = true
	}

	p.logger.Debug("projected document",
		logging.FieldBytes, len(content),
		logging.FieldCount, len(root.Children),
	)
	return doc, nil
}

// Render runs the markdown pipeline on src and projects the result.
func (p *Projector) Render(ctx context.Context, src string) (*Document, error) {
	return p.Project(ctx, markdown.Process(src))
}

// Document is a projected render tree.
type Document struct {
	Root   *Node
	Result markdown.Result

	ids         map[string]bool
	diagrams    *diagram.Service
	concurrency int
	logger      *log.Logger
}

// HasID reports whether a heading with id exists.
func (d *Document) HasID(id string) bool {
	return d.ids[id]
}

// ResolveAnchor finds the heading a fragment link points at.
func (d *Document) ResolveAnchor(hash string) (string, bool) {
	return ResolveAnchor(hash, d.HasID)
}

// Diagrams returns the mermaid nodes in document order.
func (d *Document) Diagrams() []*Node {
	return FindAll(d.Root, KindMermaid)
}

// ResolveDiagrams renders every mermaid node concurrently. A failed diagram
// records its error on the node and does not affect the others; only
// cancellation of ctx is returned.
func (d *Document) ResolveDiagrams(ctx context.Context) error {
	nodes := d.Diagrams()
	if len(nodes) == 0 || d.diagrams == nil {
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.concurrency)

	for _, node := range nodes {
		attrs := node.Mermaid
		group.Go(func() error {
			svg, err := d.diagrams.Render(groupCtx, attrs.Source)
			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				attrs.SVG, attrs.Err = "", err
				if d.logger != nil {
					d.logger.Debug("diagram failed", logging.FieldError, err)
				}
				return nil
			}
			attrs.SVG, attrs.Err = svg, nil
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("resolving diagrams: %w", err)
	}
	return nil
}
