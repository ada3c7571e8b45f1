package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the cache clear command.
func (c *CacheClearCmd) Run(deps *Dependencies) error {
	pkg := c.Package
	if pkg == "" {
		pkg = "*"
	}

	cleared, err := deps.Cache.Invalidate(deps.Ctx, pkg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if !cleared {
		fmt.Fprintln(deps.Stdout, "Nothing to clear.")
		return nil
	}
	if pkg == "*" {
		fmt.Fprintln(deps.Stdout, "Cleared all cached content.")
	} else {
		fmt.Fprintf(deps.Stdout, "Cleared cached content for %q.\n", pkg)
	}
	return nil
}
