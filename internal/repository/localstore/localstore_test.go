package localstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	var missing []record
	ok, err := store.Load(KeyItems, &missing)
	require.NoError(t, err)
	assert.False(t, ok)

	in := []record{{Name: "Milk", Qty: 2}, {Name: "Rice", Qty: 12}}
	require.NoError(t, store.Save(KeyItems, in))

	var out []record
	ok, err = store.Load(KeyItems, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	_, err = os.Stat(filepath.Join(dir, KeyItems+".json.tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	err = store.Save("../escape", 1)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestFileStoreCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyHistory+".json"), []byte("{not json"), 0o644))

	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	var out []record
	_, err = store.Load(KeyHistory, &out)
	assert.Error(t, err)
}

func TestMemoryFailureInjection(t *testing.T) {
	mem := NewMemory()
	boom := errors.New("quota exceeded")

	mem.FailSaves(KeyItems, boom)
	assert.ErrorIs(t, mem.Save(KeyItems, []int{1}), boom)
	assert.Equal(t, 0, mem.Saves(KeyItems))

	mem.FailSaves(KeyItems, nil)
	require.NoError(t, mem.Save(KeyItems, []int{1, 2}))
	assert.Equal(t, 1, mem.Saves(KeyItems))

	var out []int
	ok, err := mem.Load(KeyItems, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, out)
}
