package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON writes the resolutions as a formatted JSON array to the writer.
func WriteJSON(w io.Writer, resolutions []Resolution) error {
	if resolutions == nil {
		resolutions = []Resolution{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resolutions); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteCSV writes the resolutions as CSV to the writer.
// Always includes a header row, even if there are no resolutions.
// Column order: link, url, title, resolved, status_code, error_type
func WriteCSV(w io.Writer, resolutions []Resolution) error {
	cw := csv.NewWriter(w)

	header := []string{"link", "url", "title", "resolved", "status_code", "error_type"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, res := range resolutions {
		record := []string{
			res.Link,
			res.URL,
			res.Title,
			strconv.FormatBool(res.Resolved),
			statusCodeStr(res.StatusCode),
			string(res.Kind),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", res.Link, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// statusCodeStr converts an HTTP status code to a string.
// Returns empty string for 0 (no HTTP status).
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
