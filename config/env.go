package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "LINKTITLE_"

// envFiles are loaded in order; values already in the environment win.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() error {
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// applyEnv overrides cfg with any LINKTITLE_* variables that are set.
func applyEnv(cfg *Config) error {
	r := &cfg.Resolver
	setters := []struct {
		key string
		set func(string) error
	}{
		{"CONCURRENCY", intSetter(&r.Concurrency)},
		{"FETCH_TIMEOUT", durationSetter(&r.FetchTimeout)},
		{"IDLE_TIMEOUT", durationSetter(&r.IdleTimeout)},
		{"DOI_CITATION_STYLE", stringSetter(&r.DOICitationStyle)},
		{"DOI_RESOLVER_BASE", stringSetter(&r.DOIResolverBase)},
		{"MAX_REDIRECT_DEPTH", intSetter(&r.MaxRedirectDepth)},
		{"USER_AGENT", stringSetter(&r.UserAgent)},
		{"RATE_LIMIT", intSetter(&r.RateLimit)},
		{"ADAPTIVE_RATE", boolSetter(&r.AdaptiveRate)},
		{"RESPECT_ROBOTS", boolSetter(&r.RespectRobots)},
		{"ADDR", stringSetter(&cfg.Server.Addr)},
		{"REQUEST_TIMEOUT", durationSetter(&cfg.Server.RequestTimeout)},
		{"LOG_LEVEL", stringSetter(&cfg.Log.Level)},
		{"LOG_DEVELOPMENT", boolSetter(&cfg.Log.Development)},
	}

	for _, s := range setters {
		value, ok := os.LookupEnv(envPrefix + s.key)
		if !ok || value == "" {
			continue
		}
		if err := s.set(value); err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, s.key, err)
		}
	}
	return nil
}

func stringSetter(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func durationSetter(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
