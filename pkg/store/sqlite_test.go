package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLite_Backend(t *testing.T) {
	db := openTestSQLite(t)
	b, err := NewSQLite(context.Background(), db, "kv_test")
	require.NoError(t, err)

	testBackend(t, b)
}

func TestSQLite_PersistsAcrossBackends(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/kv.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b1, err := NewSQLite(ctx, db, "")
	require.NoError(t, err)
	s1 := Open(b1)
	require.NoError(t, s1.Put(ctx, "greeting", []byte("hello")).Err())
	require.NoError(t, s1.Close())

	b2, err := NewSQLite(ctx, db, "")
	require.NoError(t, err)
	s2 := Open(b2)
	defer s2.Close()

	v, err := s2.Get(ctx, "greeting").Get()
	require.NoError(t, err)
	require.Equal(t, "hello", string(v))
}

func TestSQLite_RejectsUnsafeTableNames(t *testing.T) {
	db := openTestSQLite(t)
	for _, name := range []string{"kv; DROP TABLE x", "1kv", "kv-store", "a b"} {
		_, err := NewSQLite(context.Background(), db, name)
		require.ErrorIs(t, err, ErrInvalidName, name)
	}
}
