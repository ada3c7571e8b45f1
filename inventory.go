package docdex

import "context"

// InventoryEntry is one (group, name, location) triple from a source index.
type InventoryEntry struct {
	// Group is the index's role key for the entry, e.g. "py:class".
	// Preserved verbatim; it feeds disambiguation, not interpretation.
	Group string `json:"group"`

	// Name is the symbol name as published by the source.
	Name string `json:"name"`

	// Location is the path to the symbol's documentation, relative to the
	// source's base URL, including the fragment identifier if any.
	Location string `json:"location"`
}

// Inventory is a parsed source index: an ordered listing of entries plus
// the header metadata the index published.
type Inventory struct {
	Project string           `json:"project"`
	Version string           `json:"version"`
	Entries []InventoryEntry `json:"entries"`
}

// InventoryFetcher retrieves and parses one source's published inventory.
//
// Failure kinds matter to callers: an EUNAVAILABLE error is transient and
// should be retried, an EINVALID error means the index is malformed or of
// an unsupported version and must not be retried.
type InventoryFetcher interface {
	FetchInventory(ctx context.Context, url string) (*Inventory, error)
}
