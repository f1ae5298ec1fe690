// Package markdown finds bare links in Markdown documents and rewrites them
// in place with minimal byte-range edits.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Region is a bare link found in a document. Start and End are byte offsets
// into the original source, End exclusive.
type Region struct {
	Start int
	End   int
	Link  string // URL to resolve; "www." links get an http:// scheme
	Text  string // Source text of the link
}

// Document is a parsed Markdown source with a selection and pending edits.
type Document struct {
	source  []byte
	regions []Region

	selStart, selEnd int
	selected         bool

	edits    []Edit
	replaced map[int]bool
}

// ErrRegionMismatch is returned when a region no longer matches the source.
var ErrRegionMismatch = errors.New("region does not match document")

// bareURLPattern extends goldmark's default linkify pattern with hosts that
// have no top-level domain: localhost, IPv4 and bracketed IPv6 literals, and
// single-label hosts that carry a port.
var bareURLPattern = regexp.MustCompile(`^(?:http|https|ftp)://` +
	`(?:[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-z]+(?::\d+)?` +
	`|(?:[-a-zA-Z0-9%._~]+@)?(?:localhost|\d{1,3}(?:\.\d{1,3}){3}|\[[0-9a-fA-F:.]+\])(?::\d+)?` +
	`|[a-zA-Z0-9][-a-zA-Z0-9]*:\d+)` +
	`(?:[/#?][-a-zA-Z0-9@:%_+.~#$!?&/=\(\);,'">\^{}\[\]` + "`" + `]*)?`)

// Parse parses source and locates its bare links. The whole document is
// selected until Select narrows it.
func Parse(source []byte) *Document {
	md := goldmark.New(goldmark.WithExtensions(
		extension.NewLinkify(extension.WithLinkifyURLRegexp(bareURLPattern)),
	))
	root := md.Parser().Parse(text.NewReader(source))

	return &Document{
		source:   source,
		regions:  findBareLinks(root, source),
		replaced: make(map[int]bool),
	}
}

// Source returns the original, unedited source.
func (d *Document) Source() []byte {
	return d.source
}

// Regions returns every bare link in the document.
func (d *Document) Regions() []Region {
	out := make([]Region, len(d.regions))
	copy(out, d.regions)
	return out
}

// Select restricts SelectedLinkRegions to links intersecting source[start:end].
func (d *Document) Select(start, end int) error {
	if start < 0 || end > len(d.source) || start > end {
		return fmt.Errorf("selection %d:%d out of range for %d bytes", start, end, len(d.source))
	}
	d.selStart, d.selEnd, d.selected = start, end, true
	return nil
}

// SelectedLinkRegions returns the bare links inside the selection, in
// document order.
func (d *Document) SelectedLinkRegions() []Region {
	if !d.selected {
		return d.Regions()
	}
	var out []Region
	for _, r := range d.regions {
		if r.Start < d.selEnd && r.End > d.selStart {
			out = append(out, r)
		}
	}
	return out
}

// ReplaceRegion queues replacement of region with text. Edits take effect
// in Bytes; offsets always refer to the original source.
func (d *Document) ReplaceRegion(region Region, text string) error {
	if region.Start < 0 || region.End > len(d.source) || region.Start > region.End ||
		string(d.source[region.Start:region.End]) != region.Text {
		return fmt.Errorf("%w: %d:%d", ErrRegionMismatch, region.Start, region.End)
	}
	if d.replaced[region.Start] {
		return fmt.Errorf("region %d:%d already replaced", region.Start, region.End)
	}
	d.replaced[region.Start] = true
	d.edits = append(d.edits, Edit{Start: region.Start, End: region.End, Replacement: []byte(text)})
	return nil
}

// Bytes returns the source with all queued replacements applied.
func (d *Document) Bytes() ([]byte, error) {
	return ApplyEdits(d.source, d.edits)
}

// findBareLinks walks the AST in document order. Goldmark does not expose
// autolink offsets, so each link is located by searching backwards from the
// start of the next text in the same block.
func findBareLinks(root gmast.Node, source []byte) []Region {
	var (
		regions []Region
		pending []*gmast.AutoLink
		cursor  int
	)

	// flush places the pending links between cursor and limit, last one first.
	flush := func(limit int) {
		if len(pending) == 0 {
			return
		}
		limit = min(limit, len(source))
		found := make([]Region, 0, len(pending))
		for i := len(pending) - 1; i >= 0 && cursor <= limit; i-- {
			label := pending[i].Label(source)
			idx := bytes.LastIndex(source[cursor:limit], label)
			if idx < 0 {
				continue
			}
			start := cursor + idx
			limit = start

			// <https://...> is already a link.
			if start > 0 && source[start-1] == '<' {
				continue
			}
			found = append(found, Region{
				Start: start,
				End:   start + len(label),
				Link:  string(pending[i].URL(source)),
				Text:  string(label),
			})
		}
		for i := len(found) - 1; i >= 0; i-- {
			regions = append(regions, found[i])
			cursor = max(cursor, found[i].End)
		}
		pending = pending[:0]
	}

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			if n.Type() == gmast.TypeBlock && n.Lines().Len() > 0 {
				flush(n.Lines().At(n.Lines().Len() - 1).Stop)
			}
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.AutoLink:
			if node.AutoLinkType == gmast.AutoLinkURL && !insideLink(node) {
				pending = append(pending, node)
			}
		case *gmast.Text:
			flush(node.Segment.Start)
			cursor = max(cursor, node.Segment.Stop)
		case *gmast.RawHTML:
			if node.Segments.Len() > 0 {
				flush(node.Segments.At(0).Start)
				cursor = max(cursor, node.Segments.At(node.Segments.Len()-1).Stop)
			}
		}
		return gmast.WalkContinue, nil
	})
	flush(len(source))

	return regions
}

func insideLink(n gmast.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.(type) {
		case *gmast.Link, *gmast.Image:
			return true
		}
	}
	return false
}
