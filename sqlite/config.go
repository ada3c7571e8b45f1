package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/docdex/docdex"
)

// Compile-time interface verification.
var _ docdex.ConfigStore = (*ConfigStore)(nil)

// ConfigStore implements docdex.ConfigStore using SQLite.
type ConfigStore struct {
	db *DB
}

// NewConfigStore creates a new ConfigStore.
func NewConfigStore(db *DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// Get returns the value for a key, or ENOTFOUND.
func (s *ConfigStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM config WHERE key = ?
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", docdex.Errorf(docdex.ENOTFOUND, "config key %q not found", key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Put stores a value under a key, overwriting any previous value.
func (s *ConfigStore) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return docdex.Errorf(docdex.EINVALID, "config key required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete removes the given keys. Missing keys are ignored.
func (s *ConfigStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM config WHERE key IN (`+placeholders+`)
	`, args...)
	return err
}

// List returns all key/value pairs whose key starts with prefix, ordered
// by key so callers iterate deterministically.
func (s *ConfigStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM config
		WHERE key >= ? AND key < ?
		ORDER BY key
	`, prefix, prefix+"\xff")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		kv[key] = value
	}
	return kv, rows.Err()
}
