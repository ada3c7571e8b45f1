package docdex

import "context"

// Renderer produces user-presentable content for a resolved symbol from
// the page it is documented on.
type Renderer interface {
	// Render fetches the symbol's page and returns the symbol's
	// documentation as Markdown. Returns EUNAVAILABLE on network
	// failure and ENOTFOUND when the page does not contain the symbol.
	Render(ctx context.Context, sym *Symbol) (string, error)
}

// Converter transforms HTML content into Markdown.
type Converter interface {
	Convert(html string) (string, error)
}
