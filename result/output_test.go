package result

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
)

func sampleResolutions() []Resolution {
	return []Resolution{
		{
			Link:     "https://example.com/post",
			Title:    "Example \\[draft\\] (post)",
			URL:      "https://example.com/post",
			Resolved: true,
		},
		{
			Link:       "https://example.com/gone",
			Title:      "gone",
			URL:        "https://example.com/gone",
			StatusCode: 404,
			Kind:       KindHTTP,
			Error:      "https://example.com/gone: HTTP 404",
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, sampleResolutions())
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	var decoded []Resolution
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("Expected 2 resolutions, got %d", len(decoded))
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("Failed to unmarshal to map: %v", err)
	}
	for _, key := range []string{"link", "title", "url", "resolved"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("Expected %q field in JSON output", key)
		}
	}
	if _, ok := raw[0]["error_type"]; ok {
		t.Error("error_type should be omitted for resolved links")
	}
	if raw[1]["error_type"] != "http_error" {
		t.Errorf("Expected error_type http_error, got %v", raw[1]["error_type"])
	}

	if !strings.Contains(buf.String(), "https://example.com/post") {
		t.Error("URLs should not be HTML-escaped")
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte("[]\n")) {
		t.Errorf("Expected '[]\\n', got %q", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResolutions()); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV output: %v", err)
	}

	expectedHeader := []string{"link", "url", "title", "resolved", "status_code", "error_type"}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records (header + 2 data), got %d", len(records))
	}
	for i, col := range expectedHeader {
		if records[0][i] != col {
			t.Errorf("Header column %d: expected %q, got %q", i, col, records[0][i])
		}
	}

	if records[1][3] != "true" {
		t.Errorf("Expected resolved 'true' in row 1, got %q", records[1][3])
	}
	if records[1][4] != "" {
		t.Errorf("Expected empty status_code in row 1, got %q", records[1][4])
	}
	if records[2][4] != "404" {
		t.Errorf("Expected status_code '404' in row 2, got %q", records[2][4])
	}
	if records[2][5] != "http_error" {
		t.Errorf("Expected error_type 'http_error' in row 2, got %q", records[2][5])
	}
}

func TestWriteCSV_EmptyWithHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV output: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record (header only), got %d", len(records))
	}
}

func TestStatusCodeStr(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{0, ""},
		{200, "200"},
		{404, "404"},
		{500, "500"},
	}

	for _, tt := range tests {
		result := statusCodeStr(tt.code)
		if result != tt.expected {
			t.Errorf("statusCodeStr(%d) = %q, expected %q", tt.code, result, tt.expected)
		}
	}
}
