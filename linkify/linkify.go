// Package linkify rewrites the bare links of a text source as titled
// Markdown links.
package linkify

import (
	"context"
	"fmt"

	"github.com/lukemcguire/linktitle/markdown"
	"github.com/lukemcguire/linktitle/result"
)

// TextSource is an editable text with a set of selected link regions.
// *markdown.Document implements it.
type TextSource interface {
	SelectedLinkRegions() []markdown.Region
	ReplaceRegion(region markdown.Region, text string) error
}

// BatchResolver resolves a batch of links. *resolver.Resolver implements it.
type BatchResolver interface {
	ResolveBatch(ctx context.Context, links []string) *result.Result
}

// Convert resolves every selected link in src and replaces each region with
// a Markdown link. Links that failed still get their fallback title; the
// returned Result reports which ones failed.
func Convert(ctx context.Context, src TextSource, r BatchResolver) (*result.Result, error) {
	regions := src.SelectedLinkRegions()
	if len(regions) == 0 {
		return &result.Result{}, nil
	}

	links := make([]string, 0, len(regions))
	for _, region := range regions {
		links = append(links, region.Link)
	}

	res := r.ResolveBatch(ctx, links)

	for _, region := range regions {
		if err := src.ReplaceRegion(region, Render(res, region.Link)); err != nil {
			return res, fmt.Errorf("replace %s: %w", region.Link, err)
		}
	}
	return res, nil
}

// Render formats link using its resolution in res. A link missing from res
// renders with itself as both title and URL.
func Render(res *result.Result, link string) string {
	title, url := link, link
	if resolution, ok := res.Lookup(link); ok {
		if resolution.Title != "" {
			title = resolution.Title
		}
		if resolution.URL != "" {
			url = resolution.URL
		}
	}
	return markdown.FormatLink(title, url)
}
