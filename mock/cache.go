package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.ContentCache = (*ContentCache)(nil)

// ContentCache is a mock implementation of docdex.ContentCache.
type ContentCache struct {
	GetFn        func(ctx context.Context, sym *docdex.Symbol) (string, error)
	SetFn        func(ctx context.Context, sym *docdex.Symbol, content string) error
	InvalidateFn func(ctx context.Context, pkg string) (bool, error)
}

func (c *ContentCache) Get(ctx context.Context, sym *docdex.Symbol) (string, error) {
	return c.GetFn(ctx, sym)
}

func (c *ContentCache) Set(ctx context.Context, sym *docdex.Symbol, content string) error {
	return c.SetFn(ctx, sym, content)
}

func (c *ContentCache) Invalidate(ctx context.Context, pkg string) (bool, error) {
	return c.InvalidateFn(ctx, pkg)
}
