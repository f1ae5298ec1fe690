package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/result"
)

// page is a fetched response whose body has not been read yet.
type page struct {
	requestURL   string
	effectiveURL string
	statusCode   int
	contentType  string
	body         io.ReadCloser
	cancel       context.CancelFunc
}

// redirected reports whether the server sent the request somewhere else.
func (p *page) redirected() bool {
	return p.effectiveURL != "" && p.effectiveURL != p.requestURL
}

// Close releases the response body and the request's timeout.
func (p *page) Close() {
	if p.body != nil {
		_ = p.body.Close()
	}
	if p.cancel != nil {
		p.cancel()
	}
}

// fetch issues a GET for link. On an HTTP error status the returned page is
// non-nil (body already closed) so callers can inspect the effective URL.
func (r *Resolver) fetch(ctx context.Context, link string) (*page, error) {
	if r.robots != nil {
		allowed, robotsErr := r.robots.Allowed(ctx, link, r.cfg.UserAgent)
		if robotsErr != nil {
			// Fail open: an unreadable robots.txt never blocks a link.
			r.logger.Debug("robots.txt check failed", zap.String("link", link), zap.Error(robotsErr))
		}
		if !allowed {
			return nil, &result.Error{Kind: result.KindRobotsDisallowed, Link: link}
		}
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, result.NewError("", link, fmt.Errorf("rate limiter wait: %w", err))
		}
	}

	// The timeout covers reading the body too, so it lives as long as the page.
	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, link, nil)
	if err != nil {
		cancel()
		return nil, &result.Error{Kind: result.KindInvalidLink, Link: link, Err: err}
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := r.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		cancel()
		fetchErr := result.NewError("", link, err)
		r.metrics.ObserveFetchDuration(elapsed, string(fetchErr.Kind))
		return nil, fetchErr
	}
	r.metrics.ObserveFetchDuration(elapsed, strconv.Itoa(resp.StatusCode))
	if r.limiter != nil {
		r.limiter.ObserveRTT(elapsed)
	}

	pg := &page{
		requestURL:  req.URL.String(),
		statusCode:  resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        resp.Body,
		cancel:      cancel,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		pg.effectiveURL = resp.Request.URL.String()
	}

	if resp.StatusCode >= 400 {
		pg.Close()
		pg.body = nil
		return pg, &result.Error{
			Kind:         result.KindHTTP,
			Link:         link,
			StatusCode:   resp.StatusCode,
			EffectiveURL: pg.effectiveURL,
		}
	}

	return pg, nil
}
