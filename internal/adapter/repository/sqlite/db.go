// Package sqlite stores the identifier mapping in an embedded SQLite
// database, for deployments where the mapping must live outside the
// primary store.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at path and ensures the mapping
// table exists. Pass ":memory:" for an in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite serializes writers; one connection also keeps :memory: a
	// single database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sync_mappings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			local_type TEXT NOT NULL,
			local_id INTEGER NOT NULL,
			external_type TEXT NOT NULL,
			external_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (local_type, local_id),
			UNIQUE (external_type, external_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_mappings_external ON sync_mappings(external_type, external_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
