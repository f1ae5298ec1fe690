package urlutil

import (
	"net/url"
	"path"
	"strings"
	"unicode"
)

// indexSegments are path segments that name a directory page rather than content.
var indexSegments = map[string]bool{
	"index":   true,
	"default": true,
	"home":    true,
	"main":    true,
}

// SuggestTitle derives a human-readable fallback title from a link.
//
// The last meaningful path segment wins ("/blog/my-first-post.html" gives
// "my first post"); a numeric segment keeps its parent for context
// ("/issues/42" gives "issues 42"). Links without a usable path fall back to
// the host without a leading "www.". Text that is not a URL is returned trimmed.
func SuggestTitle(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	normalized, err := Normalize(link)
	if err != nil {
		return link
	}
	parsed, err := url.Parse(normalized)
	if err != nil {
		return link
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")

	var segments []string
	for _, seg := range strings.Split(parsed.EscapedPath(), "/") {
		if seg == "" {
			continue
		}
		if unescaped, unescErr := url.PathUnescape(seg); unescErr == nil {
			seg = unescaped
		}
		segments = append(segments, seg)
	}

	for i := len(segments) - 1; i >= 0; i-- {
		slug := humanizeSegment(segments[i])
		if slug == "" || indexSegments[strings.ToLower(slug)] {
			continue
		}
		if isNumeric(slug) && i > 0 {
			if parent := humanizeSegment(segments[i-1]); parent != "" {
				return parent + " " + slug
			}
		}
		return slug
	}

	if host == "" {
		return link
	}
	return host
}

// humanizeSegment strips a file extension and turns separators into spaces.
func humanizeSegment(seg string) string {
	if ext := path.Ext(seg); ext != "" && len(ext) <= 6 && ext != seg {
		seg = strings.TrimSuffix(seg, ext)
	}
	seg = strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '+':
			return ' '
		}
		return r
	}, seg)
	return strings.Join(strings.Fields(seg), " ")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
