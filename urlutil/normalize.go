// Package urlutil holds the URL helpers behind fallback titles and
// fetchability checks.
package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// Normalize returns the canonical form of an absolute URL used for naming:
// scheme and host lowercased, default ports, credentials and fragment
// dropped, and a trailing slash removed from any path other than "/".
// The query string is kept.
func Normalize(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("cannot normalize empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("URL must have both scheme and host")
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	if host, port, splitErr := net.SplitHostPort(parsed.Host); splitErr == nil && defaultPorts[parsed.Scheme] == port {
		parsed.Host = host
	}
	parsed.User = nil
	parsed.Fragment = ""
	parsed.RawFragment = ""

	if parsed.Path != "/" && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = ""
	}

	return parsed.String(), nil
}
