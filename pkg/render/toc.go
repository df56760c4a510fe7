package render

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/yaklabco/mdnote/pkg/markdown"
)

var tocLinePattern = regexp.MustCompile(`^( *)[-*+] \[(.*)\]\((.*)\)\s*$`)

// ParseTOC reads the entries of a toc fence. Each two spaces of indent add
// a level; lines that are not list links are skipped.
func ParseTOC(body string) []TocEntry {
	var entries []TocEntry
	for _, line := range strings.Split(body, "\n") {
		match := tocLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}
		entries = append(entries, TocEntry{
			Level: len(match[1])/2 + 1,
			Text:  match[2],
			Href:  match[3],
		})
	}
	return entries
}

// AnchorCandidates returns the ids tried for a fragment, in order: the
// decoded hash, its NFKC form, then the slug of each. Duplicates are
// dropped.
func AnchorCandidates(hash string) []string {
	raw := strings.TrimPrefix(hash, "#")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	normalized := norm.NFKC.String(decoded)

	var out []string
	seen := make(map[string]bool)
	for _, candidate := range []string{
		decoded,
		normalized,
		markdown.Slugify(decoded),
		markdown.Slugify(normalized),
	} {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
	}
	return out
}

// ResolveAnchor returns the first candidate id for hash that exists.
func ResolveAnchor(hash string, exists func(id string) bool) (string, bool) {
	for _, candidate := range AnchorCandidates(hash) {
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
