package docdex

import (
	"regexp"
	"strings"
)

// packageNameRe restricts package names to characters that are safe in
// config keys and canonical name prefixes.
var packageNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// Source represents one registered documentation package and where its
// inventory can be fetched from.
type Source struct {
	// Package is the identifier the source's symbols are attributed to.
	Package string `json:"package"`

	// BaseURL is the documentation root all relative paths resolve
	// against. Must end with a slash.
	BaseURL string `json:"baseUrl"`

	// InventoryURL is the location of the source's published inventory.
	InventoryURL string `json:"inventoryUrl"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if !packageNameRe.MatchString(s.Package) {
		return Errorf(EINVALID, "invalid package name %q", s.Package)
	}
	if s.InventoryURL == "" {
		return Errorf(EINVALID, "source inventory URL required")
	}
	if s.BaseURL != "" && !strings.HasSuffix(s.BaseURL, "/") {
		return Errorf(EINVALID, "base URL must end with a slash")
	}
	return nil
}

// BaseURLFromInventoryURL derives a base URL from an inventory URL by
// removing the last path segment.
func BaseURLFromInventoryURL(inventoryURL string) string {
	u := strings.TrimSuffix(inventoryURL, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[:i+1]
	}
	return u + "/"
}
