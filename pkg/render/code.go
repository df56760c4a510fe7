package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yaklabco/mdnote/pkg/langdetect"
)

// RunnableMarker flags a fenced block as runnable.
const RunnableMarker = "[runnable]"

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// DefaultRunnableLanguages returns the fence tags that may be runnable.
func DefaultRunnableLanguages() []string {
	return []string{"go", "golang", "js", "javascript", "py", "python"}
}

// FenceInfo is a parsed fence info string: "lang[:filename] [meta]".
type FenceInfo struct {
	Language string
	Filename string
	Meta     string
	Runnable bool
}

// ParseFenceInfo splits a fence info string. The runnable marker may appear
// anywhere and is removed from Meta.
func ParseFenceInfo(info string) FenceInfo {
	var out FenceInfo

	if strings.Contains(info, RunnableMarker) {
		out.Runnable = true
		info = strings.ReplaceAll(info, RunnableMarker, " ")
	}

	fields := strings.Fields(info)
	if len(fields) == 0 {
		return out
	}

	lang, filename, _ := strings.Cut(fields[0], ":")
	out.Language = strings.ToLower(strings.TrimSpace(lang))
	out.Filename = strings.TrimSpace(filename)
	out.Meta = strings.Join(fields[1:], " ")
	return out
}

// highlighter renders code with chroma.
type highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newHighlighter(styleName string) *highlighter {
	if styleName == "" {
		styleName = DefaultHighlightStyle
	}
	return &highlighter{
		style: styles.Get(styleName),
		formatter: chromahtml.New(
			chromahtml.WithClasses(false),
			chromahtml.TabWidth(4),
		),
	}
}

// lexer resolves a fence tag to a chroma lexer.
func (h *highlighter) lexer(lang string) chroma.Lexer {
	if lang == "" {
		return nil
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Match("file." + lang)
	}
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}

// Highlight returns highlighted HTML for code, or "" when no lexer matches
// or tokenizing fails.
func (h *highlighter) Highlight(code, lang string) string {
	lexer := h.lexer(lang)
	if lexer == nil {
		return ""
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return ""
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return ""
	}
	return buf.String()
}

// resolveLanguage fills in a missing fence language from the filename or
// the content. It reports whether the language was guessed.
func resolveLanguage(info FenceInfo, source string) (string, bool) {
	if info.Language != "" {
		return info.Language, false
	}
	if info.Filename != "" {
		if lang, ok := langdetect.FromFilename(info.Filename); ok {
			return lang, true
		}
	}
	if lang, ok := langdetect.Guess(source); ok {
		return lang, true
	}
	return "", false
}
