package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docdex/docdex"
)

// Run executes the whitelist add command.
func (c *WhitelistAddCmd) Run(deps *Dependencies) error {
	if err := deps.Index.WhitelistAdd(deps.Ctx, c.Package, c.Scopes...); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Package %q is now limited to: %s\n", c.Package, strings.Join(c.Scopes, ", "))
	return nil
}

// Run executes the whitelist remove command.
func (c *WhitelistRemoveCmd) Run(deps *Dependencies) error {
	if err := deps.Index.WhitelistRemove(deps.Ctx, c.Package, c.Scopes...); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Lifted %q restriction for: %s\n", c.Package, strings.Join(c.Scopes, ", "))
	return nil
}

// Run executes the whitelist list command.
func (c *WhitelistListCmd) Run(deps *Dependencies) error {
	wl, err := deps.Index.Whitelist(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if len(wl) == 0 {
		fmt.Fprintln(deps.Stdout, "No visibility restrictions configured.")
		return nil
	}

	scopes := make([]string, 0, len(wl))
	for scope := range wl {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	for _, scope := range scopes {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", scope, strings.Join(wl[scope], ", "))
	}
	return nil
}
