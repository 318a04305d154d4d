// Package sqlite opens a kv store in a local SQLite file (pure Go driver).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/itchan-dev/textboard/internal/kv/sqlkv"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var Dialect = sqlkv.Dialect{
	Name: "sqlite",
	Schema: `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	Get: `SELECT value FROM kv WHERE key = ?`,
	Upsert: `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
	List: `SELECT key FROM kv WHERE substr(key, 1, length(?1)) = ?1`,
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*sqlkv.Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer, serialize through a single connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s, err := sqlkv.New(ctx, db, Dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
