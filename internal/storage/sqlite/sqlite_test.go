package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
)

func newTestDB(t *testing.T, path string) *SQLite {
	t.Helper()

	cfg := &config.Config{Storage: config.Storage{Path: path}}
	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestSQLite_GetMissingKey(t *testing.T) {
	db := newTestDB(t, filepath.Join(t.TempDir(), "students.db"))

	value, ok, err := db.Get(context.Background(), "students")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSQLite_SetThenGet(t *testing.T) {
	db := newTestDB(t, filepath.Join(t.TempDir(), "students.db"))
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "students", `[{"name":"A"}]`))

	value, ok, err := db.Get(ctx, "students")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"name":"A"}]`, value)
}

func TestSQLite_SetReplaces(t *testing.T) {
	db := newTestDB(t, filepath.Join(t.TempDir(), "students.db"))
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "students", "first"))
	require.NoError(t, db.Set(ctx, "students", "second"))
	require.NoError(t, db.Set(ctx, "other", "untouched"))

	value, _, err := db.Get(ctx, "students")
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	var rows int
	require.NoError(t, db.Db.QueryRow("SELECT COUNT(*) FROM kv_store").Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "students.db")
	ctx := context.Background()

	first := newTestDB(t, path)
	require.NoError(t, first.Set(ctx, "students", "[]"))
	require.NoError(t, first.Close())

	second := newTestDB(t, path)
	value, ok, err := second.Get(ctx, "students")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)
}
