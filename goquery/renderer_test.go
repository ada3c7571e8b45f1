package goquery_test

import (
	"context"
	"strings"
	"testing"

	"github.com/docdex/docdex"
	dxgoquery "github.com/docdex/docdex/goquery"
	"github.com/docdex/docdex/htmltomarkdown"
	"github.com/docdex/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sphinxPage = `<!DOCTYPE html>
<html><body><main>
<dl class="py function">
<dt id="asyncio.sleep"><span class="sig-name">asyncio.sleep</span><span class="sig-paren">(delay)</span></dt>
<dd><p>Block for <em>delay</em> seconds.</p></dd>
</dl>
<section id="module-asyncio"><h2>asyncio</h2><p>Asynchronous I/O.</p></section>
</main></body></html>`

func testSymbol() *docdex.Symbol {
	return &docdex.Symbol{
		Package:      "python",
		Group:        "function",
		BaseURL:      "https://docs.python.org/3/",
		RelativePath: "library/asyncio-task.html",
		FragmentID:   "asyncio.sleep",
		Name:         "asyncio.sleep",
	}
}

func TestRenderer_Render_DefinitionPair(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			assert.Equal(t, "https://docs.python.org/3/library/asyncio-task.html", url)
			return sphinxPage, nil
		},
	}
	r := dxgoquery.NewRenderer(fetcher, htmltomarkdown.NewConverter())

	got, err := r.Render(context.Background(), testSymbol())
	require.NoError(t, err)
	assert.Contains(t, got, "asyncio.sleep")
	assert.Contains(t, got, "Block for *delay* seconds.")
}

func TestRenderer_Render_SectionFragment(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return sphinxPage, nil
		},
	}
	r := dxgoquery.NewRenderer(fetcher, htmltomarkdown.NewConverter())

	sym := testSymbol()
	sym.Group = "module"
	sym.FragmentID = "module-asyncio"
	sym.Name = "asyncio"

	got, err := r.Render(context.Background(), sym)
	require.NoError(t, err)
	assert.Contains(t, got, "Asynchronous I/O.")
	assert.NotContains(t, got, "Block for")
}

func TestRenderer_Render_FragmentMissing(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return sphinxPage, nil
		},
	}
	r := dxgoquery.NewRenderer(fetcher, htmltomarkdown.NewConverter())

	sym := testSymbol()
	sym.FragmentID = "asyncio.gone"

	_, err := r.Render(context.Background(), sym)
	require.Error(t, err)
	assert.Equal(t, docdex.ENOTFOUND, docdex.ErrorCode(err))
}

func TestRenderer_Render_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return "", docdex.Errorf(docdex.EUNAVAILABLE, "fetch failed")
		},
	}
	r := dxgoquery.NewRenderer(fetcher, htmltomarkdown.NewConverter())

	_, err := r.Render(context.Background(), testSymbol())
	require.Error(t, err)
	assert.Equal(t, docdex.EUNAVAILABLE, docdex.ErrorCode(err))
}

func TestRenderer_Render_WritesThroughToCache(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return sphinxPage, nil
		},
	}
	var cached string
	cache := &mock.ContentCache{
		SetFn: func(ctx context.Context, sym *docdex.Symbol, content string) error {
			cached = content
			return nil
		},
	}
	r := dxgoquery.NewRenderer(fetcher, htmltomarkdown.NewConverter(), dxgoquery.WithCache(cache))

	got, err := r.Render(context.Background(), testSymbol())
	require.NoError(t, err)
	assert.Equal(t, got, cached)
}

func TestRenderer_Render_Truncates(t *testing.T) {
	t.Parallel()

	long := `<dl><dt id="asyncio.sleep">sig</dt><dd><p>` + strings.Repeat("word ", 200) + `</p></dd></dl>`
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return long, nil
		},
	}
	r := dxgoquery.NewRenderer(fetcher, htmltomarkdown.NewConverter(), dxgoquery.WithMaxLength(100))

	got, err := r.Render(context.Background(), testSymbol())
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(got)), 100)
	assert.True(t, strings.HasSuffix(got, "…"))
}
