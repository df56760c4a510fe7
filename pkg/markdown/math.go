package markdown

import (
	"regexp"
	"strings"
)

var (
	inlineMathPattern  = regexp.MustCompile(`\\\(([\s\S]*?)\\\)`)
	displayMathPattern = regexp.MustCompile(`\\\[([\s\S]*?)\\\]`)
)

// NormalizeMath rewrites LaTeX-style delimiters to dollar delimiters outside
// fenced regions: \( x \) becomes $x$ and \[ x \] becomes $$x$$.
func NormalizeMath(src string) string {
	return mapOutsideFences(src, func(text string) string {
		text = displayMathPattern.ReplaceAllStringFunc(text, func(match string) string {
			inner := displayMathPattern.FindStringSubmatch(match)[1]
			return "$$" + strings.TrimSpace(inner) + "$$"
		})
		return inlineMathPattern.ReplaceAllStringFunc(text, func(match string) string {
			inner := inlineMathPattern.FindStringSubmatch(match)[1]
			return "$" + strings.TrimSpace(inner) + "$"
		})
	})
}
