package result

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "nil error",
			err:  nil,
			want: KindUnknown,
		},
		{
			name: "typed error keeps its kind",
			err:  &Error{Kind: KindUnsupportedContentType, Link: "https://example.com/a.pdf"},
			want: KindUnsupportedContentType,
		},
		{
			name: "wrapped typed error",
			err:  fmt.Errorf("resolve: %w", &Error{Kind: KindHTTP, StatusCode: 404}),
			want: KindHTTP,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: KindTimeout,
		},
		{
			name: "connection refused op error",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			want: KindNetwork,
		},
		{
			name: "dns error behind url.Error",
			err:  &url.Error{Op: "Get", URL: "http://nope.invalid", Err: &net.DNSError{Err: "no such host", Name: "nope.invalid"}},
			want: KindNetwork,
		},
		{
			name: "dial error behind url.Error",
			err:  &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}},
			want: KindNetwork,
		},
		{
			name: "transport wording alone is not a network error",
			err:  errors.New("connection refused"),
			want: KindUnknown,
		},
		{
			name: "plain error",
			err:  errors.New("something odd"),
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyError_DNSFailure(t *testing.T) {
	dnsErr := &net.DNSError{
		Err:  "no such host",
		Name: "example.invalid",
	}

	got := ClassifyError(dnsErr)
	if got != KindNetwork {
		t.Errorf("ClassifyError(DNSError) = %v, want %v", got, KindNetwork)
	}
}

func TestClassifyError_TimeoutNetError(t *testing.T) {
	dnsErr := &net.DNSError{Err: "i/o timeout", Name: "slow.example", IsTimeout: true}

	got := ClassifyError(dnsErr)
	if got != KindTimeout {
		t.Errorf("ClassifyError(timeout DNSError) = %v, want %v", got, KindTimeout)
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "http error without redirect",
			err:  &Error{Kind: KindHTTP, Link: "https://a.example", StatusCode: 404, EffectiveURL: "https://a.example"},
			want: "https://a.example: HTTP 404",
		},
		{
			name: "http error via redirect",
			err:  &Error{Kind: KindHTTP, Link: "https://a.example", StatusCode: 410, EffectiveURL: "https://b.example"},
			want: "https://a.example: HTTP 410 (via https://b.example)",
		},
		{
			name: "unsupported content type",
			err:  &Error{Kind: KindUnsupportedContentType, Link: "https://a.example/x.pdf", ContentType: "application/pdf"},
			want: `link "https://a.example/x.pdf" points to non-text content "application/pdf"`,
		},
		{
			name: "wrapped cause",
			err:  &Error{Kind: KindTimeout, Link: "https://a.example", Err: context.DeadlineExceeded},
			want: "https://a.example: timeout: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError("", "https://a.example", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
	if err.Kind != KindTimeout {
		t.Errorf("NewError classified kind = %v, want %v", err.Kind, KindTimeout)
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(&Error{Kind: KindHTTP, StatusCode: 503}); got != 503 {
		t.Errorf("StatusCode() = %d, want 503", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", got)
	}
}

func TestFormatKind(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindNetwork, "Network Errors"},
		{KindTimeout, "Timeouts"},
		{KindHTTP, "HTTP Errors"},
		{KindUnsupportedContentType, "Non-text Content"},
		{KindDOILookup, "DOI Lookups"},
		{KindRedirectDepth, "Redirect Depth Exceeded"},
		{KindRobotsDisallowed, "Disallowed by robots.txt"},
		{KindInvalidLink, "Invalid Links"},
		{KindUnknown, "Other Errors"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got := FormatKind(tt.kind)
			if got != tt.want {
				t.Errorf("FormatKind(%v) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}
