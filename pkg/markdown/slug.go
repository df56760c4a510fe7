package markdown

import (
	"strconv"
	"strings"
	"unicode"
)

// defaultSlug is used when a heading has no sluggable characters.
const defaultSlug = "section"

// Slugger generates unique anchor IDs. It is not safe for concurrent use;
// create one per document render.
type Slugger struct {
	// seen counts occurrences of each base slug.
	seen map[string]int

	// used holds every ID handed out.
	used map[string]bool
}

// NewSlugger creates an empty Slugger.
func NewSlugger() *Slugger {
	return &Slugger{
		seen: make(map[string]int),
		used: make(map[string]bool),
	}
}

// Slug returns a unique ID for text. Repeated bases get "-1", "-2", ...
// suffixes; a suffixed ID that collides with an earlier literal heading
// skips ahead to the next free number.
func (s *Slugger) Slug(text string) string {
	base := Slugify(text)

	count := s.seen[base]
	id := base
	if count > 0 {
		id = base + "-" + strconv.Itoa(count)
	}
	for s.used[id] {
		count++
		id = base + "-" + strconv.Itoa(count)
	}

	s.seen[base] = count + 1
	s.used[id] = true

	return id
}

// Reserve marks id as taken so Slug never returns it.
func (s *Slugger) Reserve(id string) {
	s.used[id] = true
}

// Slugify converts text to a base anchor ID without duplicate tracking:
//  1. Lowercase.
//  2. Keep letters, digits, whitespace and '-'; drop everything else.
//  3. Turn whitespace runs into '-', collapse repeated '-'.
//  4. Trim leading and trailing '-'.
//
// An empty result becomes "section".
func Slugify(text string) string {
	var buf strings.Builder
	buf.Grow(len(text))

	prevHyphen := false
	for _, ch := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(ch) || unicode.IsNumber(ch):
			buf.WriteRune(ch)
			prevHyphen = false
		case unicode.IsSpace(ch) || ch == '-':
			if !prevHyphen {
				buf.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(buf.String(), "-")
	if slug == "" {
		return defaultSlug
	}
	return slug
}
