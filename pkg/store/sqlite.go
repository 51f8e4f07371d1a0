package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite is a Backend over one connection of a SQLite database.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
//
// A single *sql.Conn is held for the backend's lifetime, which keeps
// ":memory:" databases alive and gives every operation the same session.
type SQLite struct {
	conn  *sql.Conn
	table string
}

var _ Backend = (*SQLite)(nil)

// NewSQLite checks out a connection from db and creates table if needed.
// table defaults to "kv".
func NewSQLite(ctx context.Context, db *sql.DB, table string) (*SQLite, error) {
	if table == "" {
		table = "kv"
	}
	if err := validateName("table", table, "required,sqlident"); err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: sqlite connection: %w", err)
	}

	s := &SQLite{conn: conn, table: table}
	if err := s.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			item_key   TEXT PRIMARY KEY,
			item_value BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`, s.table),
	)
	if err != nil {
		return fmt.Errorf("store: sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT item_value FROM %s WHERE item_key = ?`, s.table),
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.conn.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (item_key, item_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(item_key) DO UPDATE SET
			item_value = excluded.item_value,
			updated_at = excluded.updated_at`, s.table),
		key,
		value,
		time.Now().UTC(),
	)
	return err
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	res, err := s.conn.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE item_key = ?`, s.table),
		key,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT item_key FROM %s ORDER BY item_key`, s.table),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close returns the connection to the pool. The *sql.DB stays open.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
