package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of docdex.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, sym *docdex.Symbol) (string, error)
}

func (r *Renderer) Render(ctx context.Context, sym *docdex.Symbol) (string, error) {
	return r.RenderFn(ctx, sym)
}

var _ docdex.Converter = (*Converter)(nil)

// Converter is a mock implementation of docdex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
