package urlutil

import (
	"net/url"
	"strings"
)

// IsHTTPScheme returns true if the URL has an http or https scheme.
// Returns false for empty strings, non-HTTP schemes, or unparseable URLs.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsFetchable reports whether rawURL is an absolute http(s) URL with a host.
func IsFetchable(rawURL string) bool {
	if !IsHTTPScheme(rawURL) {
		return false
	}
	parsed, err := url.Parse(rawURL)
	return err == nil && parsed.Host != ""
}
