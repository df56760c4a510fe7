package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/util"
)

// fontSizes maps HTML font size 1..7 to CSS.
//
//nolint:gochecknoglobals // Read-only lookup table.
var fontSizes = [...]string{"10px", "13px", "16px", "18px", "24px", "32px", "48px"}

var (
	tagPattern  = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9-]*)((?:\s[^<>]*)?/?)>`)
	attrPattern = regexp.MustCompile(`([A-Za-z_:][-A-Za-z0-9_:.]*)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+)))?`)

	// safeValuePattern accepts colors, lengths and keywords.
	safeValuePattern = regexp.MustCompile(`^[#A-Za-z0-9(),.%\s-]+$`)
)

// FontSize maps an HTML font size attribute ("1" to "7") to a CSS size.
func FontSize(size string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(size))
	if err != nil || n < 1 || n > len(fontSizes) {
		return "", false
	}
	return fontSizes[n-1], true
}

// ParseStyle keeps only the color and font-size declarations of a CSS
// declaration list. Values that could smuggle markup or URLs are dropped.
func ParseStyle(css string) StyleAttrs {
	var style StyleAttrs
	for _, decl := range strings.Split(css, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if !safeCSSValue(value) {
			continue
		}
		switch name {
		case "color":
			style.Color = value
		case "font-size":
			style.FontSize = value
		}
	}
	return style
}

func safeCSSValue(value string) bool {
	if value == "" || !safeValuePattern.MatchString(value) {
		return false
	}
	lower := strings.ToLower(value)
	return !strings.Contains(lower, "url(") && !strings.Contains(lower, "expression(")
}

// StyleFromTag derives the sanitized style of a span or font tag from its
// raw attribute string.
func StyleFromTag(name, rawAttrs string) StyleAttrs {
	attrs := parseAttrs(rawAttrs)
	style := ParseStyle(attrs["style"])

	if strings.EqualFold(name, "font") {
		if color := strings.TrimSpace(attrs["color"]); color != "" && safeCSSValue(color) {
			style.Color = color
		}
		if size, ok := FontSize(attrs["size"]); ok {
			style.FontSize = size
		}
	}
	return style
}

func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	for _, match := range attrPattern.FindAllStringSubmatch(raw, -1) {
		name := strings.ToLower(match[1])
		value := match[2]
		if value == "" {
			value = match[3]
		}
		if value == "" {
			value = match[4]
		}
		attrs[name] = value
	}
	return attrs
}

// parseStyleTag recognizes a lone opening span or font tag.
func parseStyleTag(raw string) (string, StyleAttrs, bool) {
	match := tagPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil || match[0] != strings.TrimSpace(raw) || match[1] == "/" {
		return "", StyleAttrs{}, false
	}
	name := strings.ToLower(match[2])
	if name != "span" && name != "font" {
		return "", StyleAttrs{}, false
	}
	return name, StyleFromTag(name, match[3]), true
}

// closingTagName returns the name of a lone closing tag.
func closingTagName(raw string) (string, bool) {
	match := tagPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil || match[0] != strings.TrimSpace(raw) || match[1] != "/" {
		return "", false
	}
	return strings.ToLower(match[2]), true
}

// SanitizeHTML rewrites passed-through HTML. Span and font tags keep only
// their color and size (font becomes span), div keeps its class, details
// keeps open, and every other attribute is removed. Unknown tags are
// escaped.
func SanitizeHTML(raw string) string {
	return tagPattern.ReplaceAllStringFunc(raw, func(tag string) string {
		match := tagPattern.FindStringSubmatch(tag)
		closing, name, attrs := match[1] == "/", strings.ToLower(match[2]), match[3]
		selfClosing := strings.HasSuffix(strings.TrimSpace(attrs), "/")

		switch name {
		case "span", "font":
			if closing {
				return "</span>"
			}
			css := StyleFromTag(name, attrs).CSS()
			if css == "" {
				return "<span>"
			}
			return `<span style="` + escapeAttr(css) + `">`
		case "div":
			if closing {
				return "</div>"
			}
			if class := parseAttrs(attrs)["class"]; class != "" {
				return `<div class="` + escapeAttr(class) + `">`
			}
			return "<div>"
		case "details":
			if closing {
				return "</details>"
			}
			if _, open := parseAttrs(attrs)["open"]; open {
				return "<details open>"
			}
			return "<details>"
		case "br":
			return "<br>"
		case "u", "summary", "center":
			if closing {
				return "</" + name + ">"
			}
			if selfClosing {
				return "<" + name + " />"
			}
			return "<" + name + ">"
		default:
			return string(util.EscapeHTML([]byte(tag)))
		}
	})
}

func escapeAttr(value string) string {
	return string(util.EscapeHTML([]byte(value)))
}
