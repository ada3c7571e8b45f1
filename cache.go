package docdex

import "context"

// ContentCache stores rendered symbol content keyed by the symbol's
// location. Implementations own their eviction and persistence strategy.
type ContentCache interface {
	// Get returns the cached content for the symbol, or ENOTFOUND.
	Get(ctx context.Context, sym *Symbol) (string, error)

	// Set stores rendered content for the symbol.
	Set(ctx context.Context, sym *Symbol, content string) error

	// Invalidate removes all cached content for a package, or for every
	// package when called with "*". Reports whether anything was removed.
	Invalidate(ctx context.Context, pkg string) (bool, error)
}
