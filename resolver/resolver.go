// Package resolver turns links into display titles and canonical URLs.
// It fetches each link, follows redirects, special-cases DOI citations and
// extracts HTML titles, running a batch of links on a bounded worker pool.
package resolver

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/metrics"
)

const defaultUserAgent = "linktitle/1.0 (+https://github.com/lukemcguire/linktitle)"

// Config holds resolver configuration.
type Config struct {
	Concurrency      int           // Number of concurrent workers (default 3)
	FetchTimeout     time.Duration // Per-request timeout (default 5s)
	IdleTimeout      time.Duration // Idle worker exit timeout (default 3s)
	DOICitationStyle string        // CSL style requested from the DOI resolver
	DOIResolverBase  string        // Base URL of the DOI content-negotiation endpoint
	MaxRedirectDepth int           // Extra hops followed after an HTTP error on a redirect (default 1)
	MaxBodyBytes     int64         // Cap on bytes read when scanning for a title (default 4 MiB)
	UserAgent        string        // User-Agent sent with every request
	RateLimit        int           // Requests per second; 0 disables pacing
	AdaptiveRate     bool          // Let observed response times adjust RateLimit
	RespectRobots    bool          // Skip links disallowed by robots.txt
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:      3,
		FetchTimeout:     5 * time.Second,
		IdleTimeout:      3 * time.Second,
		DOICitationStyle: "university-of-york-mla",
		DOIResolverBase:  "https://doi.org/",
		MaxRedirectDepth: 1,
		MaxBodyBytes:     4 << 20,
		UserAgent:        defaultUserAgent,
	}
}

// Resolver resolves links to titles. It is safe for concurrent use; each
// batch gets its own Store.
type Resolver struct {
	cfg        Config
	client     *http.Client
	limiter    *AdaptiveLimiter
	robots     *RobotsChecker
	logger     *zap.Logger
	metrics    metrics.Recorder
	progressCh chan<- ResolveEvent
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) { r.client = client }
}

// WithLogger sets the logger used for per-link diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = rec }
}

// WithProgress streams one ResolveEvent per finished link to ch.
// The channel is never closed by the resolver.
func WithProgress(ch chan<- ResolveEvent) Option {
	return func(r *Resolver) { r.progressCh = ch }
}

// New creates a Resolver with the given configuration.
// Zero-valued fields fall back to DefaultConfig, except MaxRedirectDepth:
// 0 turns redirect-following off.
func New(cfg Config, opts ...Option) *Resolver {
	defaults := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}
	if cfg.DOICitationStyle == "" {
		cfg.DOICitationStyle = defaults.DOICitationStyle
	}
	if cfg.DOIResolverBase == "" {
		cfg.DOIResolverBase = defaults.DOIResolverBase
	}
	if cfg.MaxRedirectDepth < 0 {
		cfg.MaxRedirectDepth = 0
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	r := &Resolver{
		cfg:     cfg,
		client:  &http.Client{},
		logger:  zap.NewNop(),
		metrics: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if cfg.RateLimit > 0 {
		r.limiter = NewAdaptiveLimiter(cfg.RateLimit, cfg.FetchTimeout/5)
		if !cfg.AdaptiveRate {
			r.limiter.SetRate(cfg.RateLimit)
		}
	}
	if cfg.RespectRobots {
		// Separate client for robots.txt with a shorter timeout
		r.robots = NewRobotsChecker(&http.Client{Timeout: cfg.FetchTimeout / 2, Transport: r.client.Transport})
	}

	return r
}

// Config returns the effective configuration after defaults were applied.
func (r *Resolver) Config() Config {
	return r.cfg
}
