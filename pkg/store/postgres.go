package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Postgres is a Backend over a single *pgx.Conn. A pgx.Conn is not safe for
// concurrent use, which is exactly what Store compensates for.
type Postgres struct {
	conn  *pgx.Conn
	table string
	owned bool
}

var _ Backend = (*Postgres)(nil)

// NewPostgres creates table if needed and returns a backend using conn.
// table defaults to "kv". Close does not close conn.
func NewPostgres(ctx context.Context, conn *pgx.Conn, table string) (*Postgres, error) {
	if table == "" {
		table = "kv"
	}
	if err := validateName("table", table, "required,sqlident"); err != nil {
		return nil, err
	}

	p := &Postgres{conn: conn, table: table}
	if err := p.initSchema(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// DialPostgres connects to dsn and returns a backend that owns the
// connection and closes it on Close.
func DialPostgres(ctx context.Context, dsn, table string) (*Postgres, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: postgres connect: %w", err)
	}
	p, err := NewPostgres(ctx, conn, table)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	p.owned = true
	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	_, err := p.conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			item_key   TEXT PRIMARY KEY,
			item_value BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`, p.table))
	if err != nil {
		return fmt.Errorf("store: postgres schema: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.conn.QueryRow(ctx,
		fmt.Sprintf(`SELECT item_value FROM %s WHERE item_key = $1`, p.table),
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := p.conn.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (item_key, item_value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_key) DO UPDATE SET
			item_value = EXCLUDED.item_value,
			updated_at = EXCLUDED.updated_at
	`, p.table),
		key,
		value,
		time.Now().UTC(),
	)
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	tag, err := p.conn.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE item_key = $1`, p.table),
		key,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.conn.Query(ctx,
		fmt.Sprintf(`SELECT item_key FROM %s ORDER BY item_key COLLATE "C"`, p.table),
	)
	if err != nil {
		return nil, err
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (p *Postgres) Close() error {
	if !p.owned {
		return nil
	}
	return p.conn.Close(context.Background())
}
