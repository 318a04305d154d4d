// Package sqlkv implements kv.Store over a single two-column SQL table.
//
// The dialect packages (pg, sqlite) only provide connection setup and the
// statements; transactions and error mapping live here.
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/itchan-dev/textboard/internal/kv"
)

// Dialect holds the statements for one SQL engine. Get, Upsert and List take
// the key (and value) as positional parameters.
type Dialect struct {
	Name   string
	Schema string
	Get    string
	Upsert string
	List   string
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

var (
	_ kv.Store       = (*Store)(nil)
	_ kv.BatchSetter = (*Store)(nil)
	_ kv.Pinger      = (*Store)(nil)
	_ kv.Closer      = (*Store)(nil)
)

// New creates the table if needed and returns the store. It takes ownership of db.
func New(ctx context.Context, db *sql.DB, d Dialect) (*Store, error) {
	if _, err := db.ExecContext(ctx, d.Schema); err != nil {
		return nil, fmt.Errorf("failed to create %s kv table: %w", d.Name, err)
	}
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.Get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", kv.ErrUnavailable, key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Upsert, key, value); err != nil {
		return fmt.Errorf("%w: set %s: %v", kv.ErrUnavailable, key, err)
	}
	return nil
}

// SetMany upserts all entries in one transaction.
func (s *Store) SetMany(ctx context.Context, entries []kv.Entry) error {
	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.dialect.Upsert)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.Key, e.Value); err != nil {
				return fmt.Errorf("set %s: %w", e.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.List, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", kv.ErrUnavailable, prefix, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: scan key: %v", kv.ErrUnavailable, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows iteration: %v", kv.ErrUnavailable, err)
	}

	// collations differ between engines, callers expect byte order
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx executes fn within a transaction, rolling back if fn returns an error.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
