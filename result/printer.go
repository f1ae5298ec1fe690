package result

import (
	"fmt"
	"io"
)

// PrintResults writes failed link details and a summary to w.
func PrintResults(w io.Writer, res *Result) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	failures := res.Failures()
	if len(failures) == 0 {
		writef("All links resolved!\n")
	} else {
		writef("Unresolved Links:\n")
		for i, link := range failures {
			writef("  Link: %s\n", link.Link)
			if link.StatusCode != 0 {
				writef("  Status: %d\n", link.StatusCode)
			}
			if link.Error != "" {
				writef("  Error: %s\n", link.Error)
			}
			writef("  Title: %s\n", link.Title)
			if i < len(failures)-1 {
				writef("\n")
			}
		}
	}
	writef("Resolved %d of %d links\n", res.Stats.Resolved, res.Stats.Total)
}
