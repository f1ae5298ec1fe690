package urlutil

import "testing"

func TestIsHTTPScheme(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"http", "http://example.com", true},
		{"https", "https://example.com/page", true},
		{"uppercase scheme", "HTTPS://example.com", true},
		{"mailto", "mailto:user@example.com", false},
		{"ftp", "ftp://files.example.com", false},
		{"bare DOI", "10.1000/xyz123", false},
		{"empty", "", false},
		{"unparseable", "://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHTTPScheme(tt.url); got != tt.expected {
				t.Errorf("IsHTTPScheme(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestIsFetchable(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://example.com/a", true},
		{"http:///no-host", false},
		{"www.example.com", false},
		{"10.1000/xyz123", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsFetchable(tt.url); got != tt.expected {
				t.Errorf("IsFetchable(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}
