// Package goquery implements docdex.Renderer by extracting a symbol's
// definition block from its documentation page.
package goquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/docdex/docdex"
)

// DefaultMaxLength caps rendered Markdown. Symbol documentation is meant
// for inline display; readers follow the link for the full page.
const DefaultMaxLength = 2800

// Ensure Renderer implements docdex.Renderer at compile time.
var _ docdex.Renderer = (*Renderer)(nil)

// Renderer fetches a symbol's page, selects the element carrying the
// symbol's fragment id, and converts it to Markdown. Sphinx marks
// definitions up as dt/dd pairs; for those the signature and its
// description are combined. Rendered content is written through to the
// cache when one is configured.
type Renderer struct {
	fetcher   docdex.Fetcher
	converter docdex.Converter
	cache     docdex.ContentCache
	maxLength int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCache enables write-through caching of rendered content.
func WithCache(cache docdex.ContentCache) Option {
	return func(r *Renderer) { r.cache = cache }
}

// WithMaxLength overrides the rendered content length cap.
func WithMaxLength(n int) Option {
	return func(r *Renderer) { r.maxLength = n }
}

// NewRenderer creates a Renderer fetching pages with fetcher and
// converting extracted HTML with converter.
func NewRenderer(fetcher docdex.Fetcher, converter docdex.Converter, opts ...Option) *Renderer {
	r := &Renderer{
		fetcher:   fetcher,
		converter: converter,
		maxLength: DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the symbol's documentation as Markdown.
func (r *Renderer) Render(ctx context.Context, sym *docdex.Symbol) (string, error) {
	html, err := r.fetcher.Fetch(ctx, sym.URL())
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", docdex.Errorf(docdex.EINVALID, "failed to parse page for %q: %v", sym.Name, err)
	}

	fragment, err := extractFragment(doc, sym)
	if err != nil {
		return "", err
	}

	markdown, err := r.converter.Convert(fragment)
	if err != nil {
		return "", err
	}
	markdown = truncate(markdown, r.maxLength)

	if r.cache != nil {
		// Caching is best effort; the content is still served.
		_ = r.cache.Set(ctx, sym, markdown)
	}
	return markdown, nil
}

// extractFragment returns the HTML of the symbol's definition block.
func extractFragment(doc *goquery.Document, sym *docdex.Symbol) (string, error) {
	var sel *goquery.Selection
	if sym.FragmentID != "" {
		sel = doc.Find(fmt.Sprintf("[id=%q]", sym.FragmentID)).First()
	} else {
		sel = doc.Find("main, article, [role=main], body").First()
	}
	if sel.Length() == 0 {
		return "", docdex.Errorf(docdex.ENOTFOUND, "symbol %q not found on its page", sym.Name)
	}

	// Sphinx definition: the id sits on the dt (signature); its
	// description is the following dd.
	if sel.Is("dt") {
		signature, err := goquery.OuterHtml(sel)
		if err != nil {
			return "", docdex.Errorf(docdex.EINVALID, "extracting %q: %v", sym.Name, err)
		}
		var description string
		if dd := sel.NextAllFiltered("dd").First(); dd.Length() > 0 {
			description, err = goquery.OuterHtml(dd)
			if err != nil {
				return "", docdex.Errorf(docdex.EINVALID, "extracting %q: %v", sym.Name, err)
			}
		}
		return signature + description, nil
	}

	fragment, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", docdex.Errorf(docdex.EINVALID, "extracting %q: %v", sym.Name, err)
	}
	return fragment, nil
}

// truncate cuts markdown to at most n runes, appending an ellipsis.
func truncate(markdown string, n int) string {
	if n <= 0 {
		return markdown
	}
	runes := []rune(markdown)
	if len(runes) <= n {
		return markdown
	}
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}
