package resolver

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/markdown"
	"github.com/lukemcguire/linktitle/result"
	"github.com/lukemcguire/linktitle/urlutil"
)

// Job is one link to resolve. Depth is 0 for links from the input and grows
// by one for each redirect followed after an HTTP error.
type Job struct {
	Link  string
	Depth int
}

// Resolve runs every resolution step for link, writing titles and redirects
// into store. A non-nil error is a *result.Error; store still holds the best
// title found for link.
func (r *Resolver) Resolve(ctx context.Context, store *Store, link string) error {
	_, err := r.resolve(ctx, store, Job{Link: link})
	return err
}

// resolve returns the last title it recorded for job.Link alongside the
// resolution error.
func (r *Resolver) resolve(ctx context.Context, store *Store, job Job) (string, error) {
	if job.Depth > r.cfg.MaxRedirectDepth {
		return "", &result.Error{Kind: result.KindRedirectDepth, Link: job.Link}
	}
	logger := r.logger.With(zap.String("link", job.Link), zap.Int("depth", job.Depth))

	var title string
	setTitle := func(t string) {
		title = t
		store.SetTitle(job.Link, t)
	}

	// Every link gets a title before any network call.
	fallback := urlutil.SuggestTitle(job.Link)
	setTitle(fallback)

	if doi, ok := MatchDOI(job.Link); ok {
		citation, err := r.lookupDOI(ctx, doi)
		if err == nil {
			setTitle(citation)
			logger.Debug("resolved DOI citation", zap.String("doi", doi))
			return title, nil
		}
		logger.Info("DOI lookup failed, fetching link", zap.String("doi", doi), zap.Error(err))
	}

	if !urlutil.IsFetchable(job.Link) {
		return title, &result.Error{Kind: result.KindInvalidLink, Link: job.Link}
	}

	pg, err := r.fetch(ctx, job.Link)
	if err != nil {
		if pg != nil && pg.redirected() && job.Depth < r.cfg.MaxRedirectDepth {
			if followed := r.followRedirect(ctx, store, job, pg.effectiveURL, logger); followed != "" {
				title = followed
			}
		}
		return title, err
	}
	defer pg.Close()

	if pg.redirected() {
		logger.Debug("link redirected", zap.String("effective_url", pg.effectiveURL))
		store.SetRedirect(job.Link, pg.effectiveURL)
		// The redirect target names the page.
		fallback = urlutil.SuggestTitle(pg.effectiveURL)
		setTitle(fallback)
	}

	if pg.contentType != "" && !strings.HasPrefix(strings.ToLower(pg.contentType), "text") {
		return title, &result.Error{
			Kind:         result.KindUnsupportedContentType,
			Link:         job.Link,
			EffectiveURL: pg.effectiveURL,
			ContentType:  pg.contentType,
		}
	}

	pageTitle, err := ExtractTitle(pg.body, pg.contentType, r.cfg.MaxBodyBytes)
	if err != nil {
		return title, result.NewError("", job.Link, err)
	}
	if pageTitle != "" {
		setTitle(markdown.EscapeBrackets(pageTitle) + " (" + fallback + ")")
	}
	return title, nil
}

// followRedirect resolves the target of a failed redirect one level deeper
// and copies the title it produced onto the original link. The title comes
// from this resolution, not the shared store, since a top-level job for the
// same target may be rewriting its entry concurrently.
func (r *Resolver) followRedirect(ctx context.Context, store *Store, job Job, target string, logger *zap.Logger) string {
	logger.Info("following redirect after HTTP error", zap.String("effective_url", target))
	store.SetRedirect(job.Link, target)

	title, err := r.resolve(ctx, store, Job{Link: target, Depth: job.Depth + 1})
	if err != nil {
		logger.Info("redirect target failed", zap.String("effective_url", target), zap.Error(err))
	}
	if title != "" {
		store.SetTitle(job.Link, title)
	}
	return title
}
