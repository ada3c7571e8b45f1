package main

import (
	"fmt"
	"strings"

	"github.com/docdex/docdex"
)

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	result, err := deps.Index.Refresh(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if len(result.Added) > 0 {
		fmt.Fprintf(deps.Stdout, "Added: %s\n", strings.Join(result.Added, ", "))
	}
	if len(result.Removed) > 0 {
		fmt.Fprintf(deps.Stdout, "Removed: %s\n", strings.Join(result.Removed, ", "))
	}
	if len(result.Failed) > 0 {
		fmt.Fprintf(deps.Stdout, "Failed (malformed inventory): %s\n", strings.Join(result.Failed, ", "))
	}
	if len(result.Rescheduled) > 0 {
		fmt.Fprintf(deps.Stdout, "Unreachable (skipped): %s\n", strings.Join(result.Rescheduled, ", "))
	}
	if len(result.Added) == 0 && len(result.Removed) == 0 &&
		len(result.Failed) == 0 && len(result.Rescheduled) == 0 {
		fmt.Fprintln(deps.Stdout, "No changes.")
	}
	return nil
}
