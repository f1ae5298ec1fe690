package resolver

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// metaTitleSelectors are consulted in order when a page has no usable <title>.
var metaTitleSelectors = []string{
	`meta[property="og:title"]`,
	`meta[name="twitter:title"]`,
}

// ExtractTitle reads at most maxBytes of an HTML body, decodes it to UTF-8
// using the declared content type and any <meta charset>, and returns the
// page title with whitespace collapsed. The first <title> whose content does
// not start with "<" wins; pages without one fall back to Open Graph and
// Twitter card titles. An empty string means no title was found.
func ExtractTitle(body io.Reader, contentType string, maxBytes int64) (string, error) {
	decoded, err := charset.NewReader(io.LimitReader(body, maxBytes), contentType)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	raw, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if title := scanTitle(bytes.NewReader(raw)); title != "" {
		return title, nil
	}
	return metaTitle(bytes.NewReader(raw)), nil
}

// scanTitle walks the token stream for the first well-formed <title> element.
func scanTitle(body io.Reader) string {
	tokenizer := html.NewTokenizer(body)

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// End of document or truncated input
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) != "title" {
				continue
			}
			if tokenizer.Next() != html.TextToken {
				continue
			}
			// Raw text guards against markup nested in a broken title.
			if bytes.HasPrefix(tokenizer.Raw(), []byte("<")) {
				continue
			}
			if title := collapseSpace(string(tokenizer.Text())); title != "" {
				return title
			}
		}
	}
}

// metaTitle looks for social-card titles when the document has no <title>.
func metaTitle(body io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return ""
	}
	for _, sel := range metaTitleSelectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if title := collapseSpace(content); title != "" {
				return title
			}
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
