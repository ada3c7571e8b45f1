package main

import (
	"fmt"
	"strings"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/index"
)

// Run executes the get command.
func (c *GetCmd) Run(deps *Dependencies) error {
	name := c.Symbol

	// Exact (and first-word) lookup first; fall back to the best fuzzy
	// match above the strict lookup cut.
	doc, err := deps.Index.Describe(deps.Ctx, name)
	if docdex.ErrorCode(err) == docdex.ENOTFOUND {
		lookupCut := float64(index.LookupThreshold)
		matches, rerr := deps.Index.Resolve(deps.Ctx, name, index.ResolveOptions{
			Scope:     c.Scope,
			Limit:     1,
			Threshold: &lookupCut,
		})
		if rerr == nil && len(matches) > 0 {
			doc, err = deps.Index.Describe(deps.Ctx, matches[0])
		}
	}
	if err != nil {
		if docdex.ErrorCode(err) == docdex.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: no symbol found for %q. Try 'docdex search %s'.\n", name, name)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s\n%s\n\n%s\n", doc.Name, doc.URL, doc.Content)
	if len(doc.Similar) > 0 {
		fmt.Fprintf(deps.Stdout, "\nSimilar: %s\n", strings.Join(doc.Similar, ", "))
	}
	if len(doc.Children) > 0 {
		fmt.Fprintf(deps.Stdout, "\nMembers: %s\n", strings.Join(doc.Children, ", "))
	}
	return nil
}
