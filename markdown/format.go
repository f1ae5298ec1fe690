package markdown

import "strings"

// FormatLink renders an inline Markdown link with an escaped title.
func FormatLink(title, url string) string {
	return "[" + EscapeBrackets(title) + "](" + url + ")"
}

// EscapeBrackets backslash-escapes '[' and ']' so a title cannot close the
// link text early. Brackets that are already escaped are left alone, so
// escaping twice gives the same result as escaping once.
func EscapeBrackets(s string) string {
	if !strings.ContainsAny(s, "[]") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '[' || c == ']') && !escaped {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		escaped = c == '\\' && !escaped
	}
	return b.String()
}
