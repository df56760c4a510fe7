package render

import (
	"net/url"
	"path"
	"strings"
)

//nolint:gochecknoglobals // Read-only lookup table.
var mediaPrefixes = []struct {
	prefix string
	kind   MediaKind
}{
	{"PIC:", MediaImage},
	{"VIDEO:", MediaVideo},
	{"AUDIO:", MediaAudio},
}

// ParseMedia classifies an image by its alt text. A PIC:, VIDEO: or AUDIO:
// prefix picks the element and is stripped from the caption; anything else
// is a plain image captioned by the last path segment of dest.
func ParseMedia(alt, dest, title string) MediaAttrs {
	filename := FilenameFromURL(dest)
	media := MediaAttrs{
		Kind:     MediaImage,
		URL:      dest,
		Caption:  filename,
		Filename: filename,
		Title:    title,
	}
	for _, p := range mediaPrefixes {
		if strings.HasPrefix(alt, p.prefix) {
			media.Kind = p.kind
			media.Caption = strings.TrimSpace(strings.TrimPrefix(alt, p.prefix))
			break
		}
	}
	return media
}

// FilenameFromURL returns the last path segment of raw, percent-decoded.
func FilenameFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.EscapedPath()
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}

	base := path.Base(p)
	if decoded, err := url.PathUnescape(base); err == nil {
		return decoded
	}
	return base
}
