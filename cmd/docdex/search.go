package main

import (
	"fmt"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/index"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	matches, err := deps.Index.Resolve(deps.Ctx, c.Query, index.ResolveOptions{
		Scope:     c.Scope,
		Limit:     c.Limit,
		Threshold: &c.Threshold,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(deps.Stdout, "No symbols matching %q.\n", c.Query)
		return nil
	}

	for _, name := range matches {
		fmt.Fprintln(deps.Stdout, name)
	}
	return nil
}
