package resolver

import "github.com/lukemcguire/linktitle/result"

// ResolveEvent reports progress for a single finished link.
type ResolveEvent struct {
	Link     string
	Title    string
	URL      string
	Kind     result.ErrorKind // Empty when the link resolved
	Error    string
	Resolved bool
	Done     int // Links finished so far in this batch
	Failed   int // Failures so far in this batch
	Total    int // Distinct links in this batch
}
