package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSlots_WriteRead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	slots, err := NewFileSlots(dir)
	require.NoError(t, err)

	_, err = slots.Read(ctx, "todos")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, slots.Write(ctx, "todos", []byte(`[1]`)))
	require.NoError(t, slots.Write(ctx, "todos", []byte(`[2]`)))

	data, err := slots.Read(ctx, "todos")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files should not be left behind")
	assert.Equal(t, "todos.json", entries[0].Name())
}

func TestFileSlots_RejectsPathTraversal(t *testing.T) {
	slots, err := NewFileSlots(t.TempDir())
	require.NoError(t, err)

	err = slots.Write(context.Background(), "../escape", []byte("x"))
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(slots.dir), "escape.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMemorySlots_CopiesData(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	data := []byte("abc")
	require.NoError(t, slots.Write(ctx, "k", data))
	data[0] = 'z'

	got, err := slots.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
