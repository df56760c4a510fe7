package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TextStats holds the counters shown in the editor status bar.
type TextStats struct {
	Chars        int
	CharsNoSpace int

	// Words counts runs of non-space characters; every Han character is a
	// word on its own.
	Words int

	Lines int
}

// Stats counts characters, words and lines in src.
func Stats(src string) TextStats {
	stats := TextStats{
		Chars: utf8.RuneCountInString(src),
	}
	if src == "" {
		return stats
	}
	stats.Lines = strings.Count(src, "\n") + 1

	inWord := false
	for _, ch := range src {
		switch {
		case unicode.IsSpace(ch):
			inWord = false
			continue
		case unicode.Is(unicode.Han, ch):
			stats.Words++
			inWord = false
		case !inWord:
			stats.Words++
			inWord = true
		}
		stats.CharsNoSpace++
	}

	return stats
}
