// Package main provides the linktitle CLI entrypoint.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/config"
	"github.com/lukemcguire/linktitle/logging"
)

// errUnresolved makes the process exit non-zero when some links failed.
var errUnresolved = errors.New("some links could not be resolved")

// Global carries state shared by all subcommands.
type Global struct {
	Config *config.Config
	Logger *zap.Logger
}

// CLI is the command-line definition.
type CLI struct {
	Config      string `short:"c" help:"Configuration file path (YAML)." type:"path"`
	Verbose     bool   `short:"v" help:"Enable debug logging."`
	Concurrency int    `help:"Number of concurrent workers (overrides config)."`
	RateLimit   int    `name:"rate-limit" help:"Requests per second, 0 for unlimited (overrides config)."`
	Robots      bool   `help:"Skip links disallowed by robots.txt."`

	Convert ConvertCmd `cmd:"" help:"Rewrite bare links in a Markdown file as titled links."`
	Resolve ResolveCmd `cmd:"" help:"Resolve links and print them as Markdown links."`
	Serve   ServeCmd   `cmd:"" help:"Serve link resolution over HTTP."`
}

// applyOverrides copies explicitly set flags onto cfg.
func (c *CLI) applyOverrides(cfg *config.Config) {
	if c.Verbose {
		cfg.Log.Level = "debug"
	}
	if c.Concurrency > 0 {
		cfg.Resolver.Concurrency = c.Concurrency
	}
	if c.RateLimit > 0 {
		cfg.Resolver.RateLimit = c.RateLimit
	}
	if c.Robots {
		cfg.Resolver.RespectRobots = true
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("linktitle"),
		kong.Description("Turn bare links into titled Markdown links."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cli.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = kctx.Run(&Global{Config: cfg, Logger: logger})
	logging.Sync(logger)
	if errors.Is(err, errUnresolved) {
		os.Exit(1)
	}
	kctx.FatalIfErrorf(err)
}
