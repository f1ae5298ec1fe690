package markdown

import (
	"errors"
	"fmt"
	"sort"
)

// Edit is a byte-range replacement of source[Start:End], End exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ApplyEdits applies non-overlapping edits, all expressed as offsets into the
// original source, and returns the updated content. Edits are applied from
// the end of the document toward the start so offsets stay valid.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].Start > sorted[j].Start
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < 0 {
			return nil, fmt.Errorf("invalid edit[%d]: negative range", i)
		}
		if e.End < e.Start {
			return nil, fmt.Errorf("invalid edit[%d]: end before start", i)
		}
		if e.End > len(source) {
			return nil, fmt.Errorf("invalid edit[%d]: range out of bounds", i)
		}
		// Sorted by Start descending, so each edit must end before the previous one starts.
		if i > 0 && e.End > sorted[i-1].Start {
			return nil, errors.New("invalid edits: overlapping ranges")
		}
	}

	out := make([]byte, 0, len(source))
	tail := len(source)
	chunks := make([][]byte, 0, 2*len(sorted)+1)
	for _, e := range sorted {
		chunks = append(chunks, source[e.End:tail], e.Replacement)
		tail = e.Start
	}
	out = append(out, source[:tail]...)
	for i := len(chunks) - 1; i >= 0; i-- {
		out = append(out, chunks[i]...)
	}
	return out, nil
}
