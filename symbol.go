package docdex

// Symbol holds the metadata of one documented name after merge.
type Symbol struct {
	// Package is the name of the source the symbol belongs to.
	Package string `json:"package"`

	// Group is the symbol's role in the source index, for example
	// "class" or "label". Treated as an opaque string.
	Group string `json:"group"`

	// BaseURL is the absolute URL the relative path resolves against.
	// It is the same for every symbol of the same package.
	BaseURL string `json:"baseUrl"`

	// RelativePath locates the page the symbol is documented on.
	RelativePath string `json:"relativePath"`

	// FragmentID locates the symbol within its page.
	FragmentID string `json:"fragmentId"`

	// Name is the canonical, globally unique name the symbol is stored
	// under. It may differ from the name the source index used if the
	// symbol was renamed to resolve a conflict.
	Name string `json:"name"`

	// Children lists same-package symbols whose canonical names extend
	// this symbol's name by a dotted segment. Display aid only; children
	// live independently in the table.
	Children []*Symbol `json:"-"`
}

// URL returns the absolute URL to the page the symbol is documented on.
func (s *Symbol) URL() string {
	return s.BaseURL + s.RelativePath
}

// Anchor returns the absolute URL to the symbol itself, including the
// fragment identifier.
func (s *Symbol) Anchor() string {
	if s.FragmentID == "" {
		return s.URL()
	}
	return s.URL() + "#" + s.FragmentID
}

// Validate returns an error if the symbol contains invalid fields.
func (s *Symbol) Validate() error {
	if s.Package == "" {
		return Errorf(EINVALID, "symbol package required")
	}
	if s.Name == "" {
		return Errorf(EINVALID, "symbol name required")
	}
	if s.BaseURL == "" {
		return Errorf(EINVALID, "symbol base URL required")
	}
	return nil
}
