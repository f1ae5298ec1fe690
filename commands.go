package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lukemcguire/linktitle/linkify"
	"github.com/lukemcguire/linktitle/markdown"
	"github.com/lukemcguire/linktitle/metrics"
	"github.com/lukemcguire/linktitle/resolver"
	"github.com/lukemcguire/linktitle/result"
	"github.com/lukemcguire/linktitle/server"
	"github.com/lukemcguire/linktitle/tui"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	File   string `arg:"" optional:"" type:"existingfile" help:"Markdown file to convert (default: stdin)."`
	Write  bool   `short:"w" help:"Rewrite FILE in place instead of printing to stdout."`
	Range  string `help:"Only convert links inside the byte range START:END."`
	TUI    bool   `name:"tui" help:"Show live progress while resolving."`
	Report string `enum:"none,text,json,csv" default:"none" help:"Per-link report written to stderr (none, text, json, csv)."`
}

func (c *ConvertCmd) Run(g *Global) error {
	if c.Write && c.File == "" {
		return fmt.Errorf("--write needs a FILE")
	}

	source, err := readSource(c.File)
	if err != nil {
		return err
	}

	doc := markdown.Parse(source)
	if c.Range != "" {
		start, end, err := parseRange(c.Range, len(source))
		if err != nil {
			return err
		}
		if err := doc.Select(start, end); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		res    *result.Result
		failed bool
	)
	if c.TUI {
		res, failed, err = runWithTUI(ctx, g, func(ctx context.Context, r *resolver.Resolver) (*result.Result, error) {
			return linkify.Convert(ctx, doc, r)
		})
	} else {
		res, err = linkify.Convert(ctx, doc, newResolver(g, g.Logger))
		failed = len(res.Failures()) > 0
	}
	if err != nil {
		return err
	}

	out, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("apply edits: %w", err)
	}
	switch {
	case c.Write && bytes.Equal(out, doc.Source()):
		g.Logger.Debug("no links converted, leaving file untouched", zap.String("file", c.File))
	case c.Write:
		if err := writeInPlace(c.File, out); err != nil {
			return err
		}
	default:
		if _, err := os.Stdout.Write(out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if err := writeReport(os.Stderr, c.Report, res); err != nil {
		return err
	}
	if failed {
		return errUnresolved
	}
	return nil
}

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Links  []string `arg:"" help:"Links to resolve."`
	Format string   `enum:"markdown,text,json,csv" default:"markdown" help:"Output format (markdown, text, json, csv)."`
}

func (c *ResolveCmd) Run(g *Global) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := newResolver(g, g.Logger).ResolveBatch(ctx, c.Links)

	if c.Format == "markdown" {
		for _, r := range res.Resolutions {
			fmt.Println(linkify.Render(res, r.Link))
		}
	} else if err := writeReport(os.Stdout, c.Format, res); err != nil {
		return err
	}

	if len(res.Failures()) > 0 {
		return errUnresolved
	}
	return nil
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)."`
}

func (c *ServeCmd) Run(g *Global) error {
	addr := g.Config.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	reg := prom.NewRegistry()
	r := resolver.New(g.Config.ResolverConfig(),
		resolver.WithLogger(g.Logger),
		resolver.WithRecorder(metrics.NewPrometheusRecorder(reg)),
	)
	ctrl := server.NewController(g.Config.Server, r, g.Logger, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, addr, server.NewRouter(ctrl), g.Logger)
}

func newResolver(g *Global, logger *zap.Logger, opts ...resolver.Option) *resolver.Resolver {
	opts = append([]resolver.Option{resolver.WithLogger(logger)}, opts...)
	return resolver.New(g.Config.ResolverConfig(), opts...)
}

// runWithTUI runs batch behind the Bubble Tea progress view and reports
// whether any link failed. Logging is silenced so it does not draw over the
// view.
func runWithTUI(ctx context.Context, g *Global, batch func(context.Context, *resolver.Resolver) (*result.Result, error)) (*result.Result, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan resolver.ResolveEvent, 100)
	r := newResolver(g, zap.NewNop(), resolver.WithProgress(progressCh))

	model := tui.NewModel(ctx, cancel, func(ctx context.Context) (*result.Result, error) {
		return batch(ctx, r)
	}, progressCh)

	final, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, false, fmt.Errorf("run TUI: %w", err)
	}
	m, ok := final.(tui.Model)
	if !ok {
		return nil, false, fmt.Errorf("unexpected TUI model %T", final)
	}
	if m.GetResult() == nil && m.Err() == nil {
		return nil, false, context.Canceled
	}
	return m.GetResult(), m.HasFailures(), m.Err()
}

func readSource(path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeInPlace(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// parseRange parses "START:END". An empty side means the start or end of a
// document of size bytes.
func parseRange(s string, size int) (start, end int, err error) {
	rawStart, rawEnd, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("invalid range %q: want START:END", s)
	}
	end = size
	if rawStart != "" {
		if start, err = strconv.Atoi(rawStart); err != nil {
			return 0, 0, fmt.Errorf("invalid range start %q: %w", rawStart, err)
		}
	}
	if rawEnd != "" {
		if end, err = strconv.Atoi(rawEnd); err != nil {
			return 0, 0, fmt.Errorf("invalid range end %q: %w", rawEnd, err)
		}
	}
	return start, end, nil
}

func writeReport(w io.Writer, format string, res *result.Result) error {
	switch format {
	case "", "none":
		return nil
	case "json":
		return result.WriteJSON(w, res.Resolutions)
	case "csv":
		return result.WriteCSV(w, res.Resolutions)
	case "text":
		result.PrintResults(w, res)
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
