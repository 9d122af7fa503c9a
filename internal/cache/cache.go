// Package cache persists a file's fingerprint alongside the
// diagnostics produced for it, letting a rerun skip analysis for any
// file whose content fingerprint hasn't changed since the last run.
// Grounded on the teacher pack's modernc.org/sqlite dependency - no
// example repo exercises it directly, so the schema and access pattern
// here are original to this package (see DESIGN.md).
package cache

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/kestrelcode/vbalint/internal/diagnostic"
)

// Cache wraps a single-file SQLite database of cached per-file results.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cache: create schema")
	}
	return &Cache{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS file_results (
	path        TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	diagnostics TEXT NOT NULL
);
`

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached diagnostics for path if its stored
// fingerprint matches fingerprint, and whether a valid entry was found.
func (c *Cache) Lookup(path, fingerprint string) ([]diagnostic.Diagnostic, bool) {
	var storedFingerprint, payload string
	err := c.db.QueryRow(
		`SELECT fingerprint, diagnostics FROM file_results WHERE path = ?`, path,
	).Scan(&storedFingerprint, &payload)
	if err != nil || storedFingerprint != fingerprint {
		return nil, false
	}

	var items []diagnostic.Diagnostic
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, false
	}
	return items, true
}

// Store persists path's fingerprint and diagnostics, replacing any
// prior entry for the same path.
func (c *Cache) Store(path, fingerprint string, items []diagnostic.Diagnostic) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(
		`INSERT INTO file_results (path, fingerprint, diagnostics) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET fingerprint = excluded.fingerprint, diagnostics = excluded.diagnostics`,
		path, fingerprint, string(payload),
	)
	return err
}
