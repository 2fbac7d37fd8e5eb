package draft

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	d := completeDraft()
	require.NoError(t, store.Save(d, StepPackages))

	// The draft lives under the fixed storage key.
	_, err := os.Stat(filepath.Join(dir, StorageKey+".json"))
	require.NoError(t, err)

	loaded, step, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepPackages, step)
	assert.Equal(t, d, loaded)
}

func TestFileStoreMissingFileYieldsFreshDraft(t *testing.T) {
	store := NewFileStore(t.TempDir())

	d, step, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepLocalization, step)
	assert.Equal(t, NewDraft(), d)
}

func TestFileStoreClear(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, store.Save(completeDraft(), StepReview))
	require.NoError(t, store.Clear())

	_, err := os.Stat(filepath.Join(dir, StorageKey+".json"))
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileStoreRejectsCorruptPayload(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, StorageKey+".json"), []byte("{not json"), 0o600))
	_, _, err := store.Load()
	assert.Error(t, err)
}

func TestFileStoreClampsOutOfRangeStep(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, StorageKey+".json"),
		[]byte(`{"draft":{},"currentStep":9}`), 0o600))

	_, step, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepLocalization, step)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	d, step, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepLocalization, step)
	assert.Equal(t, NewDraft(), d)

	saved := completeDraft()
	require.NoError(t, store.Save(saved, StepContact))

	d, step, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepContact, step)
	assert.Equal(t, saved, d)

	require.NoError(t, store.Clear())
	d, step, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepLocalization, step)
	assert.Equal(t, NewDraft(), d)
}
