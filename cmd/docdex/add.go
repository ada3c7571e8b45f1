package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	src := &docdex.Source{
		Package:      c.Package,
		BaseURL:      c.BaseURL,
		InventoryURL: c.InventoryURL,
	}

	if err := deps.Index.AddSource(deps.Ctx, src); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added package %q (%s)\n", src.Package, src.BaseURL)
	return nil
}
