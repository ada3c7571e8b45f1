package index

import (
	"context"
	"slices"

	"github.com/docdex/docdex"
)

// Degraded messages returned in place of content when rendering fails.
// Render failures never affect table state.
const (
	msgNetworkError = "Unable to parse the requested symbol due to a network error."
	msgGenericError = "Unable to parse the requested symbol due to an error."
	msgNotFound     = "Unable to parse the requested symbol."
)

// SymbolDoc is the displayable documentation of one resolved symbol.
type SymbolDoc struct {
	// Name is the canonical name the symbol resolved to.
	Name string

	// URL links to the symbol, fragment included.
	URL string

	// Content is the rendered Markdown, or a degraded message when
	// rendering failed.
	Content string

	// Similar lists canonical names that were split off this name during
	// disambiguation.
	Similar []string

	// Children lists the canonical names of the symbol's child entries.
	Children []string
}

// Describe resolves a name against the unfiltered view and returns its
// rendered documentation. If the exact name misses and contains a space,
// the first word is tried. Returns ENOTFOUND when nothing matches.
func (ix *Index) Describe(ctx context.Context, name string) (*SymbolDoc, error) {
	if err := ix.gate.BeginRead(ctx); err != nil {
		return nil, err
	}
	defer ix.gate.EndRead()

	resolved, sym := ix.getSymbol(name)
	if sym == nil {
		return nil, docdex.Errorf(docdex.ENOTFOUND, "no documentation found for %q", name)
	}

	doc := &SymbolDoc{
		Name:    resolved,
		URL:     sym.Anchor(),
		Content: ix.markdown(ctx, sym),
	}

	ix.mu.Lock()
	doc.Similar = slices.Clone(ix.renamed[resolved])
	ix.mu.Unlock()
	for _, child := range sym.Children {
		doc.Children = append(doc.Children, child.Name)
	}
	return doc, nil
}

// markdown returns the symbol's rendered content: the cache first, the
// renderer on a miss. Renderer failures are translated into degraded
// messages; nothing is stored here, caching is the collaborators' concern.
func (ix *Index) markdown(ctx context.Context, sym *docdex.Symbol) string {
	if ix.cache != nil {
		content, err := ix.cache.Get(ctx, sym)
		if err == nil {
			return content
		}
		if docdex.ErrorCode(err) != docdex.ENOTFOUND {
			ix.logger.Warn("content cache lookup failed", "symbol", sym.Name, "err", err)
		} else {
			ix.logger.Debug("content cache miss", "symbol", sym.Name)
		}
	}

	if ix.renderer == nil {
		return msgNotFound
	}

	content, err := ix.renderer.Render(ctx, sym)
	switch {
	case err == nil && content != "":
		return content
	case err == nil:
		return msgNotFound
	case docdex.ErrorCode(err) == docdex.EUNAVAILABLE:
		ix.logger.Warn("network error rendering symbol", "symbol", sym.Name, "err", err)
		return msgNetworkError
	case docdex.ErrorCode(err) == docdex.ENOTFOUND:
		ix.logger.Debug("symbol not found on its page", "symbol", sym.Name)
		return msgNotFound
	default:
		ix.logger.Error("unexpected error rendering symbol", "symbol", sym.Name, "err", err)
		return msgGenericError
	}
}
