package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "students")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "students", "[1]"))
	require.NoError(t, s.Set(ctx, "students", "[2]"))

	value, ok, err := s.Get(ctx, "students")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[2]", value)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "students.json", entries[0].Name())
}

func TestStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_RejectsUnsafeKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape", "a/b"} {
		t.Run(key, func(t *testing.T) {
			assert.ErrorIs(t, s.Set(ctx, key, "x"), ErrInvalidKey)
			_, _, err := s.Get(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}
