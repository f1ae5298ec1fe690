// Package result holds the per-link outcomes of a resolution batch and the
// writers that report them.
package result

import "time"

// Resolution is the outcome for one distinct input link.
type Resolution struct {
	Link       string        `json:"link"`                  // The link as it appeared in the input
	Title      string        `json:"title"`                 // Resolved display title (may be a fallback)
	URL        string        `json:"url"`                   // Canonical URL: redirect target or the link itself
	Resolved   bool          `json:"resolved"`              // False when any fetch step failed
	StatusCode int           `json:"status_code,omitempty"` // HTTP status of the failing response (0 if none)
	Kind       ErrorKind     `json:"error_type,omitempty"`  // Failure classification
	Error      string        `json:"error,omitempty"`       // Failure message
	Duration   time.Duration `json:"-"`                     // Time spent resolving this link
}

// BatchStats contains aggregate statistics for a resolution batch.
type BatchStats struct {
	BatchID  string        // Identifier used in logs for this batch
	Total    int           // Number of distinct links resolved
	Resolved int           // Links that resolved without error
	Failed   int           // Links that ended in a failure
	Duration time.Duration // Wall time for the whole batch
}

// Result is the complete output of a resolution batch, one Resolution per
// distinct link in first-seen input order.
type Result struct {
	Resolutions []Resolution
	Stats       BatchStats
}

// Failures returns the resolutions that did not resolve cleanly.
func (r *Result) Failures() []Resolution {
	if r == nil {
		return nil
	}
	var failed []Resolution
	for _, res := range r.Resolutions {
		if !res.Resolved {
			failed = append(failed, res)
		}
	}
	return failed
}

// Lookup returns the resolution for link, if the batch contains it.
func (r *Result) Lookup(link string) (Resolution, bool) {
	if r == nil {
		return Resolution{}, false
	}
	for _, res := range r.Resolutions {
		if res.Link == link {
			return res, true
		}
	}
	return Resolution{}, false
}
