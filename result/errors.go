package result

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind represents the classification of a resolution failure.
type ErrorKind string

const (
	KindNetwork                ErrorKind = "network_error"
	KindTimeout                ErrorKind = "timeout"
	KindHTTP                   ErrorKind = "http_error"
	KindUnsupportedContentType ErrorKind = "unsupported_content_type"
	KindDOILookup              ErrorKind = "doi_lookup_failed"
	KindRedirectDepth          ErrorKind = "redirect_depth_exceeded"
	KindRobotsDisallowed       ErrorKind = "robots_disallowed"
	KindInvalidLink            ErrorKind = "invalid_link"
	KindUnknown                ErrorKind = "unknown"
)

// Error is the typed failure produced by a resolution step.
type Error struct {
	Kind         ErrorKind
	Link         string // The link being resolved when the step failed
	StatusCode   int    // HTTP status for KindHTTP
	EffectiveURL string // Final URL after redirects, when a response was received
	ContentType  string // Declared type for KindUnsupportedContentType
	Err          error  // Underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		if e.EffectiveURL != "" && e.EffectiveURL != e.Link {
			return fmt.Sprintf("%s: HTTP %d (via %s)", e.Link, e.StatusCode, e.EffectiveURL)
		}
		return fmt.Sprintf("%s: HTTP %d", e.Link, e.StatusCode)
	case KindUnsupportedContentType:
		return fmt.Sprintf("link %q points to non-text content %q", e.Link, e.ContentType)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Link, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Link, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps cause as a typed failure for link, classifying it when kind is empty.
func NewError(kind ErrorKind, link string, cause error) *Error {
	if kind == "" {
		kind = ClassifyError(cause)
	}
	return &Error{Kind: kind, Link: link, Err: cause}
}

// ClassifyError determines the failure kind of err. Typed errors keep their
// kind; transport errors are classified the way net/http reports them.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	// url.Error and net.OpError both implement net.Error
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindNetwork
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindNetwork
	}

	return KindUnknown
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.StatusCode
	}
	return 0
}

// FormatKind returns a human-readable label for a failure kind.
func FormatKind(kind ErrorKind) string {
	switch kind {
	case KindNetwork:
		return "Network Errors"
	case KindTimeout:
		return "Timeouts"
	case KindHTTP:
		return "HTTP Errors"
	case KindUnsupportedContentType:
		return "Non-text Content"
	case KindDOILookup:
		return "DOI Lookups"
	case KindRedirectDepth:
		return "Redirect Depth Exceeded"
	case KindRobotsDisallowed:
		return "Disallowed by robots.txt"
	case KindInvalidLink:
		return "Invalid Links"
	default:
		return "Other Errors"
	}
}
