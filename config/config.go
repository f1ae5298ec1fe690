// Package config loads linktitle settings from YAML, .env files and
// LINKTITLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lukemcguire/linktitle/resolver"
)

// Config is the complete application configuration.
type Config struct {
	Resolver ResolverConfig `yaml:"resolver"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// ResolverConfig controls link resolution.
type ResolverConfig struct {
	Concurrency      int           `yaml:"concurrency"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	DOICitationStyle string        `yaml:"doi_citation_style"`
	DOIResolverBase  string        `yaml:"doi_resolver_base"`
	MaxRedirectDepth int           `yaml:"max_redirect_depth"`
	MaxBodyBytes     int64         `yaml:"max_body_bytes"`
	UserAgent        string        `yaml:"user_agent,omitempty"`
	RateLimit        int           `yaml:"rate_limit"`
	AdaptiveRate     bool          `yaml:"adaptive_rate"`
	RespectRobots    bool          `yaml:"respect_robots"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	rc := resolver.DefaultConfig()
	return &Config{
		Resolver: ResolverConfig{
			Concurrency:      rc.Concurrency,
			FetchTimeout:     rc.FetchTimeout,
			IdleTimeout:      rc.IdleTimeout,
			DOICitationStyle: rc.DOICitationStyle,
			DOIResolverBase:  rc.DOIResolverBase,
			MaxRedirectDepth: rc.MaxRedirectDepth,
			MaxBodyBytes:     rc.MaxBodyBytes,
			UserAgent:        rc.UserAgent,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), .env files and the environment, then validates it.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// ${VAR} references are expanded before parsing.
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	r := c.Resolver
	switch {
	case r.Concurrency <= 0:
		return errors.New("resolver.concurrency must be positive")
	case r.FetchTimeout <= 0:
		return errors.New("resolver.fetch_timeout must be positive")
	case r.IdleTimeout <= 0:
		return errors.New("resolver.idle_timeout must be positive")
	case r.MaxRedirectDepth < 0:
		return errors.New("resolver.max_redirect_depth must not be negative")
	case r.MaxBodyBytes <= 0:
		return errors.New("resolver.max_body_bytes must be positive")
	case r.RateLimit < 0:
		return errors.New("resolver.rate_limit must not be negative")
	case c.Server.RequestTimeout <= 0:
		return errors.New("server.request_timeout must be positive")
	case c.Server.MaxBodyBytes <= 0:
		return errors.New("server.max_body_bytes must be positive")
	}

	base, err := url.Parse(r.DOIResolverBase)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("resolver.doi_resolver_base %q must be an http(s) URL", r.DOIResolverBase)
	}
	return nil
}

// ResolverConfig converts the resolver section for resolver.New.
func (c *Config) ResolverConfig() resolver.Config {
	r := c.Resolver
	return resolver.Config{
		Concurrency:      r.Concurrency,
		FetchTimeout:     r.FetchTimeout,
		IdleTimeout:      r.IdleTimeout,
		DOICitationStyle: r.DOICitationStyle,
		DOIResolverBase:  r.DOIResolverBase,
		MaxRedirectDepth: r.MaxRedirectDepth,
		MaxBodyBytes:     r.MaxBodyBytes,
		UserAgent:        r.UserAgent,
		RateLimit:        r.RateLimit,
		AdaptiveRate:     r.AdaptiveRate,
		RespectRobots:    r.RespectRobots,
	}
}
