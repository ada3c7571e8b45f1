package index

import (
	"strings"

	"github.com/docdex/docdex"
)

// updateSingle merges a parsed inventory for one source into the table,
// assigning every entry a collision-free canonical name. The caller must
// hold the gate's write side.
func (ix *Index) updateSingle(pkg, baseURL string, inv *docdex.Inventory) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.baseURLs[pkg] = baseURL
	if _, ok := ix.symbols[pkg]; !ok {
		ix.symbols[pkg] = make(map[string]*docdex.Symbol, len(inv.Entries))
		ix.packages = append(ix.packages, pkg)
	}

	for _, entry := range inv.Entries {
		// e.g. get "class" from "py:class".
		group := entry.Group
		if _, role, ok := strings.Cut(group, ":"); ok {
			group = role
		}

		name := ix.ensureUniqueName(pkg, group, entry.Name)

		rel, frag, _ := strings.Cut(entry.Location, "#")
		sym := &docdex.Symbol{
			Package:      pkg,
			Group:        group,
			BaseURL:      baseURL,
			RelativePath: rel,
			FragmentID:   frag,
			Name:         name,
		}
		if _, exists := ix.symbols[pkg][name]; !exists {
			ix.order[pkg] = append(ix.order[pkg], name)
		}
		ix.symbols[pkg][name] = sym

		if parentName, ok := parentOf(name); ok {
			if parent := ix.symbols[pkg][parentName]; parent != nil && parent.Package == pkg {
				parent.Children = append(parent.Children, sym)
			}
		}
	}

	ix.markDirty()
	ix.logger.Debug("merged inventory", "package", pkg, "entries", len(inv.Entries))
}

// ensureUniqueName returns the canonical name to store an incoming entry
// under, renaming either the incoming entry or the existing entry it
// conflicts with. Every produced alternate name is appended to the rename
// ledger under the original proposed name. Caller holds mu.
//
// Precedence: priority sources keep their short names across sources;
// within a source, names in low-priority groups yield to others; otherwise
// the existing entry is renamed under its group.
func (ix *Index) ensureUniqueName(pkg, group, name string) string {
	existing := ix.lookupAll(name)
	if existing == nil {
		return name
	}

	rename := func(prefix string, renameExtant bool) string {
		newName := prefix + "." + name
		if ix.lookupAll(newName) != nil {
			// Still conflicting: qualify fully with source and group.
			if renameExtant {
				newName = existing.Package + "." + existing.Group + "." + name
			} else {
				newName = pkg + "." + group + "." + name
			}
		}
		ix.renamed[name] = append(ix.renamed[name], newName)

		if renameExtant {
			// Re-insert the conflicting entry under its new canonical
			// name; the incoming entry keeps the proposed name.
			delete(ix.symbols[existing.Package], existing.Name)
			replaceOrdered(ix.order[existing.Package], existing.Name, newName)
			existing.Name = newName
			ix.symbols[existing.Package][newName] = existing
			ix.markDirty()
			return name
		}
		return newName
	}

	if pkg != existing.Package {
		if ix.priority[pkg] {
			return rename(existing.Package, true)
		}
		return rename(pkg, false)
	}

	if gi, ok := ix.prefixGroupIndex(group); ok {
		moveExisting := false
		if ei, extant := ix.prefixGroupIndex(existing.Group); extant {
			// Rename whichever entry's group sorts later; on a tie the
			// existing entry moves.
			moveExisting = gi <= ei
		}
		if moveExisting {
			return rename(existing.Group, true)
		}
		return rename(group, false)
	}

	return rename(existing.Group, true)
}

// prefixGroupIndex returns the position of group in the ordered
// low-priority set.
func (ix *Index) prefixGroupIndex(group string) (int, bool) {
	for i, g := range ix.prefixGroups {
		if g == group {
			return i, true
		}
	}
	return 0, false
}

// parentOf returns the dotted-path prefix of a name, if it has one.
func parentOf(name string) (string, bool) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return "", false
	}
	return name[:i], true
}

// replaceOrdered swaps old for new in a listing-order slice, preserving
// the entry's position.
func replaceOrdered(names []string, old, new string) {
	for i, n := range names {
		if n == old {
			names[i] = new
			return
		}
	}
}
