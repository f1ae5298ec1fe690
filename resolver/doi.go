package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/lukemcguire/linktitle/result"
)

// doiPattern matches a DOI: "10.", a 4-5 digit registrant, "/", and a suffix
// that does not end in punctuation. The suffix stops at a URL query or fragment.
var doiPattern = regexp.MustCompile(`\b10\.\d{4,5}/[^\s?#]*[^\s\p{P}]`)

// maxCitationBytes caps the citation body read from the DOI resolver.
const maxCitationBytes = 64 << 10

// MatchDOI returns the DOI embedded in link, if any.
func MatchDOI(link string) (string, bool) {
	doi := doiPattern.FindString(link)
	return doi, doi != ""
}

// lookupDOI asks the DOI resolver for a formatted bibliography entry.
func (r *Resolver) lookupDOI(ctx context.Context, doi string) (citation string, err error) {
	defer func() { r.metrics.IncDOILookup(err == nil) }()

	endpoint, err := url.JoinPath(r.cfg.DOIResolverBase, doi)
	if err != nil {
		return "", &result.Error{Kind: result.KindDOILookup, Link: doi, Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &result.Error{Kind: result.KindDOILookup, Link: doi, Err: err}
	}
	req.Header.Set("Accept", "text/x-bibliography; style="+r.cfg.DOICitationStyle)
	req.Header.Set("X-Citation-Style", r.cfg.DOICitationStyle)
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &result.Error{Kind: result.KindDOILookup, Link: doi, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &result.Error{Kind: result.KindDOILookup, Link: doi, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("DOI resolver returned %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCitationBytes))
	if err != nil {
		return "", &result.Error{Kind: result.KindDOILookup, Link: doi, Err: fmt.Errorf("read citation: %w", err)}
	}

	citation = strings.TrimSpace(string(body))
	if citation == "" {
		return "", &result.Error{Kind: result.KindDOILookup, Link: doi, Err: errors.New("empty citation")}
	}
	return citation, nil
}
