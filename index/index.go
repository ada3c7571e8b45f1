// Package index implements the documentation-symbol inventory engine: it
// merges fetched inventories into one conflict-free symbol table, serves
// gated lookups and fuzzy resolution against it, and keeps per-source
// refresh state machines with retry scheduling.
package index

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/docdex/docdex"
)

// Retry delays for transiently unreachable inventories. The first retry for
// a source uses the short delay, every subsequent retry the longer one.
const (
	DefaultRetryFirst    = 2 * time.Minute
	DefaultRetryRepeated = 5 * time.Minute
)

// defaultPrefixGroups are the low-priority groups that yield their short
// name first in same-source conflicts, in precedence order.
var defaultPrefixGroups = []string{"term", "label", "token", "doc", "pdbcommand", "2to3fixer"}

// defaultPriorityPackages keep their short names in cross-source conflicts.
var defaultPriorityPackages = []string{"python"}

// Index is the inventory engine. All exported methods are safe for
// concurrent use; table reads and writes are coordinated by a Gate so that
// no reader ever observes a partially rebuilt table.
type Index struct {
	fetcher  docdex.InventoryFetcher
	store    docdex.ConfigStore
	cache    docdex.ContentCache
	renderer docdex.Renderer
	logger   *slog.Logger

	gate      *Gate
	scheduler *Scheduler

	retryFirst    time.Duration
	retryRepeated time.Duration
	priority      map[string]bool
	prefixGroups  []string
	denyScopes    map[string][]string

	// mu guards the table state below. Mutation additionally requires the
	// gate's write side; mu alone only serializes merge goroutines within
	// one write phase and memoized view rebuilds.
	mu        sync.Mutex
	baseURLs  map[string]string
	packages  []string                             // registration order
	symbols   map[string]map[string]*docdex.Symbol // package -> canonical name -> symbol
	order     map[string][]string                  // package -> canonical names in listing order
	renamed   map[string][]string                  // original name -> canonical names split from it
	whitelist map[string][]string                  // scope -> packages layered over the default view

	flat     map[string]*docdex.Symbol // default view, whitelisted packages excluded
	flatAll  map[string]*docdex.Symbol // unfiltered view
	flatOrd  []string                  // unfiltered view names in listing order
	flatDirt bool
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) { ix.logger = logger }
}

// WithCache sets the rendered-content cache collaborator.
func WithCache(cache docdex.ContentCache) Option {
	return func(ix *Index) { ix.cache = cache }
}

// WithRenderer sets the content renderer collaborator.
func WithRenderer(r docdex.Renderer) Option {
	return func(ix *Index) { ix.renderer = r }
}

// WithRetryDelays overrides the transient-failure retry delays.
func WithRetryDelays(first, repeated time.Duration) Option {
	return func(ix *Index) {
		ix.retryFirst = first
		ix.retryRepeated = repeated
	}
}

// WithPriorityPackages sets the sources that keep their short names in
// cross-source conflicts.
func WithPriorityPackages(pkgs ...string) Option {
	return func(ix *Index) {
		ix.priority = make(map[string]bool, len(pkgs))
		for _, p := range pkgs {
			ix.priority[p] = true
		}
	}
}

// WithPrefixGroups sets the ordered low-priority groups for same-source
// conflict resolution.
func WithPrefixGroups(groups ...string) Option {
	return func(ix *Index) { ix.prefixGroups = slices.Clone(groups) }
}

// WithDenyList maps consumer scopes to packages whose symbols are demoted
// for that scope.
func WithDenyList(deny map[string][]string) Option {
	return func(ix *Index) { ix.denyScopes = deny }
}

// New creates an Index reading sources and visibility from store and
// fetching inventories with fetcher.
func New(fetcher docdex.InventoryFetcher, store docdex.ConfigStore, opts ...Option) *Index {
	ix := &Index{
		fetcher:       fetcher,
		store:         store,
		logger:        slog.Default(),
		gate:          NewGate(),
		retryFirst:    DefaultRetryFirst,
		retryRepeated: DefaultRetryRepeated,
		prefixGroups:  defaultPrefixGroups,
		baseURLs:      make(map[string]string),
		symbols:       make(map[string]map[string]*docdex.Symbol),
		order:         make(map[string][]string),
		renamed:       make(map[string][]string),
		whitelist:     make(map[string][]string),
	}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.priority == nil {
		WithPriorityPackages(defaultPriorityPackages...)(ix)
	}
	ix.scheduler = NewScheduler(ix.logger)
	return ix
}

// Close cancels all pending retries and waits for them to stop.
func (ix *Index) Close() error {
	ix.scheduler.Shutdown()
	return nil
}

// markDirty invalidates the memoized flattened views. Caller holds mu.
func (ix *Index) markDirty() {
	ix.flatDirt = true
}

// rebuildViews recomputes the flattened views by layering packages in
// registration order. Caller holds mu.
func (ix *Index) rebuildViews() {
	flatAll := make(map[string]*docdex.Symbol)
	var flatOrd []string
	for _, pkg := range ix.packages {
		for _, name := range ix.order[pkg] {
			if _, ok := flatAll[name]; ok {
				continue
			}
			flatAll[name] = ix.symbols[pkg][name]
			flatOrd = append(flatOrd, name)
		}
	}

	hidden := make(map[string]bool)
	for _, pkgs := range ix.whitelist {
		for _, pkg := range pkgs {
			hidden[pkg] = true
		}
	}
	flat := make(map[string]*docdex.Symbol)
	for name, sym := range flatAll {
		if !hidden[sym.Package] {
			flat[name] = sym
		}
	}

	ix.flatAll = flatAll
	ix.flatOrd = flatOrd
	ix.flat = flat
	ix.flatDirt = false
}

// views returns the memoized flattened views, rebuilding them if stale.
func (ix *Index) views() (flatAll, flat map[string]*docdex.Symbol) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.flatDirt || ix.flatAll == nil {
		ix.rebuildViews()
	}
	return ix.flatAll, ix.flat
}

// lookupAll finds a symbol by canonical name across every package, in
// registration order. Used during merges when the memoized views are stale.
// Caller holds mu.
func (ix *Index) lookupAll(name string) *docdex.Symbol {
	for _, pkg := range ix.packages {
		if sym, ok := ix.symbols[pkg][name]; ok {
			return sym
		}
	}
	return nil
}

// getSymbol resolves a name against the unfiltered view. If the exact name
// misses and contains a space, the first word is tried as a fallback.
// Returns the resolved name and the symbol, or nil when not found.
func (ix *Index) getSymbol(name string) (string, *docdex.Symbol) {
	flatAll, _ := ix.views()
	if sym, ok := flatAll[name]; ok {
		return name, sym
	}
	if first, _, ok := strings.Cut(name, " "); ok {
		if sym, found := flatAll[first]; found {
			return first, sym
		}
	}
	return name, nil
}

// candidatesForScope returns the candidate names visible to a scope in
// deterministic order: the scope's whitelisted packages first (sorted, in
// listing order within each), then the default view.
func (ix *Index) candidatesForScope(scope string) ([]string, map[string]*docdex.Symbol) {
	_, flat := ix.views()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	wl := ix.whitelist[scope]
	if len(wl) == 0 {
		names := make([]string, 0, len(flat))
		for _, name := range ix.flatOrd {
			if _, ok := flat[name]; ok {
				names = append(names, name)
			}
		}
		return names, flat
	}

	byName := make(map[string]*docdex.Symbol, len(flat))
	var names []string
	for _, pkg := range wl {
		for _, name := range ix.order[pkg] {
			if _, ok := byName[name]; ok {
				continue
			}
			byName[name] = ix.symbols[pkg][name]
			names = append(names, name)
		}
	}
	for _, name := range ix.flatOrd {
		sym, ok := flat[name]
		if !ok {
			continue
		}
		if _, dup := byName[name]; dup {
			continue
		}
		byName[name] = sym
		names = append(names, name)
	}
	return names, byName
}

// deniedPackages returns the deny-listed packages for a scope, or nil.
func (ix *Index) deniedPackages(scope string) map[string]bool {
	pkgs, ok := ix.denyScopes[scope]
	if !ok {
		return nil
	}
	denied := make(map[string]bool, len(pkgs))
	for _, pkg := range pkgs {
		denied[pkg] = true
	}
	return denied
}
