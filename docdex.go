// Package docdex provides a documentation-symbol inventory engine. It
// ingests intersphinx-style package inventories, merges them into a single
// conflict-free symbol table, and serves fuzzy name resolution and
// on-demand rendered content for resolved symbols.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, intersphinx/).
package docdex
