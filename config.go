package docdex

import "context"

// Config key namespaces. Sources live under ConfigInventories, per-scope
// visibility allow-lists under ConfigWhitelist.
const (
	ConfigPrefix      = "documentation"
	ConfigInventories = ConfigPrefix + ".inventories"
	ConfigWhitelist   = ConfigPrefix + ".whitelist"
)

// ConfigStore is a persisted hierarchical key/value store. Keys are
// dot-separated paths; List returns every key sharing a prefix.
type ConfigStore interface {
	// Get returns the value for a key, or ENOTFOUND.
	Get(ctx context.Context, key string) (string, error)

	// Put stores a value under a key, overwriting any previous value.
	Put(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// List returns all key/value pairs whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)
}
