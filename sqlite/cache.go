package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/docdex/docdex"
	"github.com/docdex/docdex/bloom"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docdex.ContentCache = (*ContentCache)(nil)

// ContentCache implements docdex.ContentCache using SQLite, fronted by a
// Bloom filter so lookups for never-cached symbols skip the database. The
// filter only accumulates keys; after an invalidation its stale positives
// fall through to the real query.
type ContentCache struct {
	db     *DB
	filter *bloom.Filter
}

// NewContentCache creates a new ContentCache.
func NewContentCache(db *DB) *ContentCache {
	return &ContentCache{
		db:     db,
		filter: bloom.NewFilter(100_000, 0.01),
	}
}

// Warm seeds the presence filter from the existing cache rows. Call once
// after opening the database; without it every stored key's first lookup
// would short-circuit to a miss.
func (c *ContentCache) Warm(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx, `SELECT cache_key FROM rendered_content`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		c.filter.Add(key)
	}
	return rows.Err()
}

// cacheKey locates a symbol's rendered content. Fragment included: two
// symbols on the same page render to different blocks.
func cacheKey(sym *docdex.Symbol) string {
	return sym.Package + ":" + sym.RelativePath + "#" + sym.FragmentID
}

// hashContent computes xxHash of content and returns a hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// Get returns the cached content for the symbol, or ENOTFOUND.
func (c *ContentCache) Get(ctx context.Context, sym *docdex.Symbol) (string, error) {
	key := cacheKey(sym)
	if !c.filter.Test(key) {
		return "", docdex.Errorf(docdex.ENOTFOUND, "no cached content for %q", sym.Name)
	}

	var content string
	err := c.db.QueryRowContext(ctx, `
		SELECT content FROM rendered_content WHERE cache_key = ?
	`, key).Scan(&content)

	if err == sql.ErrNoRows {
		return "", docdex.Errorf(docdex.ENOTFOUND, "no cached content for %q", sym.Name)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// Set stores rendered content for the symbol, replacing any previous
// content for the same key. Unchanged content is left untouched.
func (c *ContentCache) Set(ctx context.Context, sym *docdex.Symbol, content string) error {
	if err := sym.Validate(); err != nil {
		return err
	}

	key := cacheKey(sym)
	hash := hashContent(content)

	var existing string
	err := c.db.QueryRowContext(ctx, `
		SELECT content_hash FROM rendered_content WHERE cache_key = ?
	`, key).Scan(&existing)
	if err == nil && existing == hash {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO rendered_content (id, cache_key, package, content, content_hash, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			rendered_at = excluded.rendered_at
	`, uuid.New().String(), key, sym.Package, content, hash,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	c.filter.Add(key)
	return nil
}

// Invalidate removes all cached content for a package, or for every
// package when called with "*". Reports whether anything was removed.
func (c *ContentCache) Invalidate(ctx context.Context, pkg string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if pkg == "*" {
		res, err = c.db.ExecContext(ctx, `DELETE FROM rendered_content`)
	} else {
		res, err = c.db.ExecContext(ctx, `DELETE FROM rendered_content WHERE package = ?`, pkg)
	}
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
