package main

import (
	"fmt"
	"sort"

	"github.com/docdex/docdex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	pkgs, err := deps.Index.Packages(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	// The table is empty until a refresh, so list from the persisted
	// sources instead.
	if len(pkgs) == 0 {
		kv, err := deps.Index.Sources(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
			return err
		}
		for _, src := range kv {
			pkgs[src.Package] = src.BaseURL
		}
	}

	if len(pkgs) == 0 {
		fmt.Fprintln(deps.Stdout, "No packages registered. Use 'docdex add' to register one.")
		return nil
	}

	names := make([]string, 0, len(pkgs))
	for pkg := range pkgs {
		names = append(names, pkg)
	}
	sort.Strings(names)

	for _, pkg := range names {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", pkg, pkgs[pkg])
	}
	return nil
}
