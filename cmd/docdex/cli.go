package main

import (
	"context"
	"io"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/index"
	"github.com/docdex/docdex/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	DB     *sqlite.DB
	Index  *index.Index
	Cache  docdex.ContentCache
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Add       AddCmd       `cmd:"" help:"Register a documentation package from its inventory URL"`
	Remove    RemoveCmd    `cmd:"" help:"Remove a documentation package"`
	List      ListCmd      `cmd:"" help:"List registered documentation packages"`
	Refresh   RefreshCmd   `cmd:"" help:"Rebuild the symbol table from all registered inventories"`
	Get       GetCmd       `cmd:"" help:"Show rendered documentation for a symbol"`
	Search    SearchCmd    `cmd:"" help:"Fuzzy-search symbol names"`
	Whitelist WhitelistCmd `cmd:"" help:"Manage per-scope package visibility"`
	Cache     CacheCmd     `cmd:"" help:"Manage the rendered content cache"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Package      string `arg:"" help:"Package name (lowercase letters, digits, underscores)"`
	InventoryURL string `arg:"" name:"inventory-url" help:"URL of the package's objects.inv"`
	BaseURL      string `name:"base-url" help:"Documentation base URL (derived from the inventory URL when omitted)"`
}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	Package string `arg:"" help:"Package name"`
	Force   bool   `help:"Confirm removal"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct{}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	Symbol string `arg:"" help:"Symbol name to look up"`
	Scope  string `short:"s" help:"Visibility scope to resolve in"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query     string  `arg:"" help:"Partial symbol name"`
	Scope     string  `short:"s" help:"Visibility scope to resolve in"`
	Limit     int     `short:"n" default:"24" help:"Maximum number of matches"`
	Threshold float64 `default:"45" help:"Minimum match score"`
}

// WhitelistCmd groups the whitelist subcommands.
type WhitelistCmd struct {
	Add    WhitelistAddCmd    `cmd:"" help:"Restrict a package to the given scopes"`
	Remove WhitelistRemoveCmd `cmd:"" help:"Lift a package's restriction for the given scopes"`
	List   WhitelistListCmd   `cmd:"" help:"Show the scope visibility table"`
}

// WhitelistAddCmd is the "whitelist add" subcommand.
type WhitelistAddCmd struct {
	Package string   `arg:"" help:"Package name"`
	Scopes  []string `arg:"" help:"Scopes the package stays visible in"`
}

// WhitelistRemoveCmd is the "whitelist remove" subcommand.
type WhitelistRemoveCmd struct {
	Package string   `arg:"" help:"Package name"`
	Scopes  []string `arg:"" help:"Scopes to lift the restriction for"`
}

// WhitelistListCmd is the "whitelist list" subcommand.
type WhitelistListCmd struct{}

// CacheCmd groups the cache subcommands.
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Drop cached rendered content"`
}

// CacheClearCmd is the "cache clear" subcommand.
type CacheClearCmd struct {
	Package string `arg:"" optional:"" help:"Package to clear (all packages when omitted)"`
}
