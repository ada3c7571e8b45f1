package index_test

import (
	"testing"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresh_CrossSourceConflict_IncomingRenamed(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource("python", "https://docs.python.org/3/objects.inv")
	store.addSource("zope", "https://zope.example.com/objects.inv")

	fetcher := newInventoryFetcher()
	fetcher.serve("https://docs.python.org/3/objects.inv", &docdex.Inventory{
		Entries: entries("py:function", "print", "functions.html#print"),
	})
	fetcher.serve("https://zope.example.com/objects.inv", &docdex.Inventory{
		Entries: entries("py:function", "print", "api.html#print"),
	})

	ix := index.New(fetcher.mock(), store.mock())
	defer ix.Close()
	ctx := testContext(t)

	_, err := ix.Refresh(ctx)
	require.NoError(t, err)

	// python merges first and keeps the short name; zope's entry is
	// stored under its package prefix.
	doc, err := ix.Describe(ctx, "print")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.python.org/3/functions.html#print", doc.URL)
	assert.Equal(t, []string{"zope.print"}, doc.Similar)

	doc, err = ix.Describe(ctx, "zope.print")
	require.NoError(t, err)
	assert.Equal(t, "https://zope.example.com/api.html#print", doc.URL)
}

func TestRefresh_CrossSourceConflict_PrioritySourceEvictsHolder(t *testing.T) {
	t.Parallel()

	// "aaa" sorts before "python" and merges first, claiming the short
	// name. The priority source then takes it over.
	store := newMemStore()
	store.addSource("aaa", "https://aaa.example.com/objects.inv")
	store.addSource("python", "https://docs.python.org/3/objects.inv")

	fetcher := newInventoryFetcher()
	fetcher.serve("https://aaa.example.com/objects.inv", &docdex.Inventory{
		Entries: entries("py:function", "print", "api.html#print"),
	})
	fetcher.serve("https://docs.python.org/3/objects.inv", &docdex.Inventory{
		Entries: entries("py:function", "print", "functions.html#print"),
	})

	ix := index.New(fetcher.mock(), store.mock())
	defer ix.Close()
	ctx := testContext(t)

	_, err := ix.Refresh(ctx)
	require.NoError(t, err)

	doc, err := ix.Describe(ctx, "print")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.python.org/3/functions.html#print", doc.URL)
	assert.Equal(t, []string{"aaa.print"}, doc.Similar)

	doc, err = ix.Describe(ctx, "aaa.print")
	require.NoError(t, err)
	assert.Equal(t, "https://aaa.example.com/api.html#print", doc.URL)
}

func TestRefresh_SameSourceConflict_ExtantRenamedUnderGroup(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource("python", "https://docs.python.org/3/objects.inv")

	fetcher := newInventoryFetcher()
	fetcher.serve("https://docs.python.org/3/objects.inv", &docdex.Inventory{
		Entries: entries(
			"std:label", "json", "guide/json.html#json",
			"py:module", "json", "library/json.html#module-json",
		),
	})

	ix := index.New(fetcher.mock(), store.mock())
	defer ix.Close()
	ctx := testContext(t)

	_, err := ix.Refresh(ctx)
	require.NoError(t, err)

	// The label yields its short name to the module.
	doc, err := ix.Describe(ctx, "json")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.python.org/3/library/json.html#module-json", doc.URL)
	assert.Equal(t, []string{"label.json"}, doc.Similar)

	doc, err = ix.Describe(ctx, "label.json")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.python.org/3/guide/json.html#json", doc.URL)
}

func TestRefresh_SameSourceConflict_IncomingLowPriorityRenamed(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource("python", "https://docs.python.org/3/objects.inv")

	fetcher := newInventoryFetcher()
	fetcher.serve("https://docs.python.org/3/objects.inv", &docdex.Inventory{
		Entries: entries(
			"py:class", "deque", "library/collections.html#collections.deque",
			"std:label", "deque", "guide/deque.html#deque",
		),
	})

	ix := index.New(fetcher.mock(), store.mock())
	defer ix.Close()
	ctx := testContext(t)

	_, err := ix.Refresh(ctx)
	require.NoError(t, err)

	// The class holds the short name; the incoming label is prefixed.
	doc, err := ix.Describe(ctx, "deque")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.python.org/3/library/collections.html#collections.deque", doc.URL)
	assert.Equal(t, []string{"label.deque"}, doc.Similar)

	doc, err = ix.Describe(ctx, "label.deque")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.python.org/3/guide/deque.html#deque", doc.URL)
}

func TestRefresh_DoubleConflict_FullyQualified(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource("python", "https://docs.python.org/3/objects.inv")

	fetcher := newInventoryFetcher()
	fetcher.serve("https://docs.python.org/3/objects.inv", &docdex.Inventory{
		Entries: entries(
			"std:label", "io", "guide/io.html#io",
			"py:module", "io", "library/io.html#module-io",
			"std:label", "io", "tutorial/io.html#io",
		),
	})

	ix := index.New(fetcher.mock(), store.mock())
	defer ix.Close()
	ctx := testContext(t)

	_, err := ix.Refresh(ctx)
	require.NoError(t, err)

	// First label renamed to label.io, module keeps io; the second label
	// conflicts again and label.io is taken, so it is fully qualified.
	doc, err := ix.Describe(ctx, "io")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.python.org/3/library/io.html#module-io", doc.URL)
	assert.ElementsMatch(t, []string{"label.io", "python.label.io"}, doc.Similar)

	_, err = ix.Describe(ctx, "label.io")
	require.NoError(t, err)
	_, err = ix.Describe(ctx, "python.label.io")
	require.NoError(t, err)
}

func TestRefresh_AttachesChildren(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource("python", "https://docs.python.org/3/objects.inv")

	fetcher := newInventoryFetcher()
	fetcher.serve("https://docs.python.org/3/objects.inv", &docdex.Inventory{
		Entries: entries(
			"py:class", "Counter", "library/collections.html#collections.Counter",
			"py:method", "Counter.most_common", "library/collections.html#collections.Counter.most_common",
			"py:method", "Counter.subtract", "library/collections.html#collections.Counter.subtract",
		),
	})

	ix := index.New(fetcher.mock(), store.mock())
	defer ix.Close()
	ctx := testContext(t)

	_, err := ix.Refresh(ctx)
	require.NoError(t, err)

	doc, err := ix.Describe(ctx, "Counter")
	require.NoError(t, err)
	assert.Equal(t, []string{"Counter.most_common", "Counter.subtract"}, doc.Children)
}

func TestRefresh_IsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource("python", "https://docs.python.org/3/objects.inv")
	store.addSource("zope", "https://zope.example.com/objects.inv")

	fetcher := newInventoryFetcher()
	fetcher.serve("https://docs.python.org/3/objects.inv", &docdex.Inventory{
		Entries: entries("py:function", "print", "functions.html#print"),
	})
	fetcher.serve("https://zope.example.com/objects.inv", &docdex.Inventory{
		Entries: entries("py:function", "print", "api.html#print"),
	})

	ix := index.New(fetcher.mock(), store.mock())
	defer ix.Close()
	ctx := testContext(t)

	_, err := ix.Refresh(ctx)
	require.NoError(t, err)
	first, err := ix.Describe(ctx, "print")
	require.NoError(t, err)

	// Rebuilding from the same inventories yields the same table; renames
	// do not accumulate across refreshes.
	result, err := ix.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)

	second, err := ix.Describe(ctx, "print")
	require.NoError(t, err)
	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, first.Similar, second.Similar)
}
