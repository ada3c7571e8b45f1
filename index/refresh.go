package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docdex/docdex"
	"golang.org/x/sync/errgroup"
)

// RefreshResult describes the outcome of a full refresh.
type RefreshResult struct {
	// Added and Removed list the packages that appeared in or vanished
	// from the table compared to the previous refresh.
	Added   []string
	Removed []string

	// Failed lists packages whose inventory was permanently rejected
	// this cycle (malformed index). They are not retried.
	Failed []string

	// Rescheduled lists packages whose fetch failed transiently and was
	// scheduled for a retry.
	Rescheduled []string
}

// Refresh clears the table and the rename ledger and rebuilds both from
// every registered source's freshly fetched inventory. Pending per-source
// retries are cancelled first. Returns ECONFLICT without queueing when
// another exclusive operation is in progress.
func (ix *Index) Refresh(ctx context.Context) (*RefreshResult, error) {
	if err := ix.gate.TryAcquire(ctx); err != nil {
		return nil, err
	}
	defer ix.gate.Release()
	return ix.refreshExclusive(ctx)
}

// refreshExclusive performs the rebuild. The caller holds the gate's
// write side.
func (ix *Index) refreshExclusive(ctx context.Context) (*RefreshResult, error) {
	ix.logger.Debug("refreshing documentation inventory")
	ix.scheduler.CancelAll()

	ix.mu.Lock()
	old := make(map[string]bool, len(ix.packages))
	for _, pkg := range ix.packages {
		old[pkg] = true
	}
	ix.baseURLs = make(map[string]string)
	ix.packages = nil
	ix.symbols = make(map[string]map[string]*docdex.Symbol)
	ix.order = make(map[string][]string)
	ix.renamed = make(map[string][]string)
	ix.markDirty()
	ix.mu.Unlock()

	sources, err := ix.loadSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	// Fetch all inventories concurrently, then merge sequentially in
	// registration order so canonical name assignment is reproducible.
	inventories := make([]*docdex.Inventory, len(sources))
	fetchErrs := make([]error, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			inventories[i], fetchErrs[i] = ix.fetcher.FetchInventory(gctx, src.InventoryURL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &RefreshResult{}
	for i, src := range sources {
		switch {
		case fetchErrs[i] == nil:
			ix.updateSingle(src.Package, src.BaseURL, inventories[i])
		case docdex.ErrorCode(fetchErrs[i]) == docdex.EINVALID:
			ix.logger.Warn("invalid inventory; not retrying",
				"package", src.Package, "url", src.InventoryURL, "err", fetchErrs[i])
			result.Failed = append(result.Failed, src.Package)
		default:
			ix.logger.Info("inventory fetch failed; rescheduling",
				"package", src.Package, "delay", ix.retryFirst, "err", fetchErrs[i])
			ix.rescheduleFetch(src, ix.retryFirst)
			result.Rescheduled = append(result.Rescheduled, src.Package)
		}
	}

	if err := ix.loadVisibility(ctx); err != nil {
		ix.logger.Warn("refreshing visibility filters failed", "err", err)
	}

	ix.mu.Lock()
	ix.rebuildViews()
	for _, pkg := range ix.packages {
		if !old[pkg] {
			result.Added = append(result.Added, pkg)
		}
		delete(old, pkg)
	}
	ix.mu.Unlock()
	for pkg := range old {
		result.Removed = append(result.Removed, pkg)
	}
	sort.Strings(result.Added)
	sort.Strings(result.Removed)

	ix.logger.Debug("finished inventory refresh",
		"packages", len(result.Added), "failed", len(result.Failed))
	return result, nil
}

// rescheduleFetch arranges another fetch attempt for the source after
// delay. A retried fetch that fails transiently again is rescheduled with
// the repeated delay; a permanent failure ends the source's cycle.
func (ix *Index) rescheduleFetch(src docdex.Source, delay time.Duration) {
	ix.scheduler.ScheduleLater(delay, src.Package, func(ctx context.Context) {
		inv, err := ix.fetcher.FetchInventory(ctx, src.InventoryURL)
		switch {
		case err == nil:
			if gerr := ix.gate.Acquire(ctx); gerr != nil {
				return
			}
			ix.updateSingle(src.Package, src.BaseURL, inv)
			ix.gate.Release()
		case docdex.ErrorCode(err) == docdex.EINVALID:
			ix.logger.Warn("invalid inventory; not retrying",
				"package", src.Package, "url", src.InventoryURL, "err", err)
		case ctx.Err() != nil:
			return
		default:
			ix.logger.Info("inventory fetch failed; rescheduling",
				"package", src.Package, "delay", ix.retryRepeated, "err", err)
			ix.rescheduleFetch(src, ix.retryRepeated)
		}
	})
}

// Sources returns every registered source from the config store, sorted by
// package name. It reads persisted configuration, not the symbol table, so
// it works before any refresh.
func (ix *Index) Sources(ctx context.Context) ([]docdex.Source, error) {
	return ix.loadSources(ctx)
}

// loadSources reads every registered source from the config store, sorted
// by package name for reproducible registration order.
func (ix *Index) loadSources(ctx context.Context) ([]docdex.Source, error) {
	kv, err := ix.store.List(ctx, docdex.ConfigInventories+".")
	if err != nil {
		return nil, err
	}

	byPkg := make(map[string]*docdex.Source)
	for key, value := range kv {
		rest := strings.TrimPrefix(key, docdex.ConfigInventories+".")
		pkg, field, ok := strings.Cut(rest, ".")
		src := byPkg[pkg]
		if src == nil {
			src = &docdex.Source{Package: pkg}
			byPkg[pkg] = src
		}
		if !ok {
			continue // bare package marker key
		}
		switch field {
		case "base_url":
			src.BaseURL = value
		case "inventory_url":
			src.InventoryURL = value
		}
	}

	pkgs := make([]string, 0, len(byPkg))
	for pkg := range byPkg {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	sources := make([]docdex.Source, 0, len(pkgs))
	for _, pkg := range pkgs {
		src := byPkg[pkg]
		if src.InventoryURL == "" {
			ix.logger.Warn("source has no inventory URL; skipping", "package", pkg)
			continue
		}
		if src.BaseURL == "" {
			src.BaseURL = docdex.BaseURLFromInventoryURL(src.InventoryURL)
		}
		sources = append(sources, *src)
	}
	return sources, nil
}

// loadVisibility reloads the per-scope whitelist from the config store.
// The caller must hold the gate's write side.
func (ix *Index) loadVisibility(ctx context.Context) error {
	whitelist, err := ix.readWhitelist(ctx)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.whitelist = whitelist
	ix.markDirty()
	ix.mu.Unlock()
	return nil
}

// AddSource validates and fetches a new source's inventory, persists the
// source, and merges its entries without touching other sources. The gate
// is held for the whole command, store writes included, so a conflicting
// writer leaves both the store and the table untouched. The inventory is
// fetched before anything is stored so an unreachable or malformed index
// rejects the whole operation.
func (ix *Index) AddSource(ctx context.Context, src *docdex.Source) error {
	if err := src.Validate(); err != nil {
		return err
	}

	if err := ix.gate.TryAcquire(ctx); err != nil {
		return err
	}
	defer ix.gate.Release()

	key := docdex.ConfigInventories + "." + src.Package
	if _, err := ix.store.Get(ctx, key); err == nil {
		return docdex.Errorf(docdex.ECONFLICT, "package %q is already added", src.Package)
	} else if docdex.ErrorCode(err) != docdex.ENOTFOUND {
		return err
	}

	inv, err := ix.fetcher.FetchInventory(ctx, src.InventoryURL)
	if err != nil {
		return err
	}

	if src.BaseURL == "" {
		src.BaseURL = docdex.BaseURLFromInventoryURL(src.InventoryURL)
	}

	if err := ix.store.Put(ctx, key, src.Package); err != nil {
		return err
	}
	if err := ix.store.Put(ctx, key+".base_url", src.BaseURL); err != nil {
		return err
	}
	if err := ix.store.Put(ctx, key+".inventory_url", src.InventoryURL); err != nil {
		return err
	}

	ix.updateSingle(src.Package, src.BaseURL, inv)

	ix.logger.Info("added documentation package",
		"package", src.Package, "base_url", src.BaseURL, "inventory_url", src.InventoryURL)
	return nil
}

// RemoveSource deletes a source from the config store, rebuilds the table
// from the remaining sources and drops the package's cached content. The
// gate is held for the whole command, store writes included, so a
// conflicting writer leaves the store untouched.
func (ix *Index) RemoveSource(ctx context.Context, pkg string) error {
	if err := ix.gate.TryAcquire(ctx); err != nil {
		return err
	}
	defer ix.gate.Release()

	key := docdex.ConfigInventories + "." + pkg
	if _, err := ix.store.Get(ctx, key); err != nil {
		if docdex.ErrorCode(err) == docdex.ENOTFOUND {
			return docdex.Errorf(docdex.ENOTFOUND, "no package found with name %q", pkg)
		}
		return err
	}

	if err := ix.store.Delete(ctx, key, key+".base_url", key+".inventory_url"); err != nil {
		return err
	}

	if _, err := ix.refreshExclusive(ctx); err != nil {
		return err
	}

	if ix.cache != nil {
		if _, err := ix.cache.Invalidate(ctx, pkg); err != nil {
			ix.logger.Warn("cache invalidation failed", "package", pkg, "err", err)
		}
	}
	return nil
}

// WhitelistAdd limits a package to the given scopes: once whitelisted
// anywhere, the package disappears from the default view and is layered
// back in only for those scopes.
func (ix *Index) WhitelistAdd(ctx context.Context, pkg string, scopes ...string) error {
	return ix.editWhitelist(ctx, pkg, scopes, true)
}

// WhitelistRemove reverts WhitelistAdd for the given scopes.
func (ix *Index) WhitelistRemove(ctx context.Context, pkg string, scopes ...string) error {
	return ix.editWhitelist(ctx, pkg, scopes, false)
}

func (ix *Index) editWhitelist(ctx context.Context, pkg string, scopes []string, add bool) error {
	if len(scopes) == 0 {
		return docdex.Errorf(docdex.EINVALID, "at least one scope required")
	}
	if _, err := ix.store.Get(ctx, docdex.ConfigInventories+"."+pkg); err != nil {
		if docdex.ErrorCode(err) == docdex.ENOTFOUND {
			return docdex.Errorf(docdex.ENOTFOUND, "no package found with name %q", pkg)
		}
		return err
	}

	for _, scope := range scopes {
		key := docdex.ConfigWhitelist + "." + scope
		var pkgs []string
		if value, err := ix.store.Get(ctx, key); err == nil {
			for _, p := range strings.Split(value, ",") {
				if p != "" && p != pkg {
					pkgs = append(pkgs, p)
				}
			}
		} else if docdex.ErrorCode(err) != docdex.ENOTFOUND {
			return err
		}
		if add {
			pkgs = append(pkgs, pkg)
		}
		sort.Strings(pkgs)

		if len(pkgs) == 0 {
			if err := ix.store.Delete(ctx, key); err != nil {
				return err
			}
			continue
		}
		if err := ix.store.Put(ctx, key, strings.Join(pkgs, ",")); err != nil {
			return err
		}
	}

	if err := ix.gate.Acquire(ctx); err != nil {
		return err
	}
	defer ix.gate.Release()
	return ix.loadVisibility(ctx)
}

// readWhitelist parses the scope -> packages allow-list from the config
// store.
func (ix *Index) readWhitelist(ctx context.Context) (map[string][]string, error) {
	kv, err := ix.store.List(ctx, docdex.ConfigWhitelist+".")
	if err != nil {
		return nil, err
	}

	whitelist := make(map[string][]string, len(kv))
	for key, value := range kv {
		scope := strings.TrimPrefix(key, docdex.ConfigWhitelist+".")
		var pkgs []string
		for _, pkg := range strings.Split(value, ",") {
			if pkg = strings.TrimSpace(pkg); pkg != "" {
				pkgs = append(pkgs, pkg)
			}
		}
		sort.Strings(pkgs)
		whitelist[scope] = pkgs
	}
	return whitelist, nil
}

// Whitelist returns the current scope -> packages visibility allow-list.
// It reads persisted configuration, so it works before any refresh.
func (ix *Index) Whitelist(ctx context.Context) (map[string][]string, error) {
	return ix.readWhitelist(ctx)
}

// Packages returns the registered packages and their base URLs.
func (ix *Index) Packages(ctx context.Context) (map[string]string, error) {
	if err := ix.gate.BeginRead(ctx); err != nil {
		return nil, err
	}
	defer ix.gate.EndRead()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make(map[string]string, len(ix.baseURLs))
	for pkg, url := range ix.baseURLs {
		out[pkg] = url
	}
	return out, nil
}

// SuggestLink returns a best-effort documentation link for a package name:
// its registered base URL, or the URL of a symbol sharing its name.
func (ix *Index) SuggestLink(ctx context.Context, pkg string) (string, bool) {
	if err := ix.gate.BeginRead(ctx); err != nil {
		return "", false
	}
	defer ix.gate.EndRead()

	ix.mu.Lock()
	url, ok := ix.baseURLs[pkg]
	ix.mu.Unlock()
	if ok {
		return url, true
	}

	_, flat := ix.views()
	if sym, found := flat[pkg]; found {
		return sym.URL(), true
	}
	return "", false
}
