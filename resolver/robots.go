package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const (
	robotsCacheTTL = time.Hour
	maxRobotsBytes = 512 << 10
)

// robotsEntry is a parsed robots.txt; nil data means allow everything.
type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// RobotsChecker fetches and caches robots.txt rules per host.
type RobotsChecker struct {
	client *http.Client
	mu     sync.Mutex
	cache  map[string]*robotsEntry // scheme://host -> rules
	ttl    time.Duration
}

// NewRobotsChecker creates a RobotsChecker using client for robots.txt requests.
func NewRobotsChecker(client *http.Client) *RobotsChecker {
	return &RobotsChecker{
		client: client,
		cache:  make(map[string]*robotsEntry),
		ttl:    robotsCacheTTL,
	}
}

// Allowed reports whether userAgent may fetch link. Any failure to read or
// parse robots.txt allows the link; the error is returned for logging.
func (r *RobotsChecker) Allowed(ctx context.Context, link, userAgent string) (bool, error) {
	u, err := url.Parse(link)
	if err != nil {
		return true, fmt.Errorf("parse URL: %w", err)
	}
	if u.Host == "" {
		return true, nil
	}
	origin := u.Scheme + "://" + u.Host

	entry, ok := r.lookup(origin)
	if !ok {
		entry, err = r.load(ctx, origin)
		r.store(origin, entry)
	}
	if entry.data == nil {
		return true, err
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return entry.data.TestAgent(path, userAgent), err
}

func (r *RobotsChecker) lookup(origin string) (*robotsEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[origin]
	if !ok || time.Since(entry.fetchedAt) >= r.ttl {
		return nil, false
	}
	return entry, true
}

func (r *RobotsChecker) store(origin string, entry *robotsEntry) {
	r.mu.Lock()
	r.cache[origin] = entry
	r.mu.Unlock()
}

// load fetches origin's robots.txt. It always returns a usable entry.
func (r *RobotsChecker) load(ctx context.Context, origin string) (*robotsEntry, error) {
	entry := &robotsEntry{fetchedAt: time.Now()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return entry, fmt.Errorf("create robots.txt request for %s: %w", origin, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return entry, fmt.Errorf("fetch robots.txt for %s: %w", origin, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 404 and 5xx both mean no rules apply.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		return entry, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return entry, fmt.Errorf("read robots.txt for %s: %w", origin, err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return entry, fmt.Errorf("parse robots.txt for %s: %w", origin, err)
	}
	entry.data = data
	return entry, nil
}

// ClearCache drops all cached robots.txt entries.
func (r *RobotsChecker) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]*robotsEntry)
	r.mu.Unlock()
}
