package dirtycat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/encoder"
	"github.com/poiesic/dirtycat/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("create new store", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "models_db")
		store, err := Open(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()

		assert.NotNil(t, store.Models())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		store, err := Open(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestStore_Close(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	require.NotNil(t, store)

	err = store.Close()
	assert.NoError(t, err)
}

func TestStore_SaveLoadAgglomerative(t *testing.T) {
	ctx := context.Background()
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	values := []string{"london", "londom", "paris", "pariss", "tokyo"}

	enc, err := encoder.NewAgglomerative(3)
	require.NoError(t, err)
	defer enc.Release()
	require.NoError(t, enc.Fit(ctx, values))
	require.NoError(t, store.SaveEncoder(ctx, "cities", enc))

	loaded, err := store.LoadAgglomerativeEncoder(ctx, "cities")
	require.NoError(t, err)
	defer loaded.Release()

	assert.Equal(t, enc.Categories(), loaded.Categories())
	assert.Equal(t, enc.Clusters(), loaded.Clusters())

	probe := []string{"london", "londen", "tokyo"}
	want, err := enc.Transform(ctx, probe)
	require.NoError(t, err)
	got, err := loaded.Transform(ctx, probe)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_SaveLoadDistance(t *testing.T) {
	ctx := context.Background()
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	values := []string{"london", "londom", "paris", "pariss", "tokyo"}

	enc, err := encoder.NewDistance(encoder.WithComponents(2))
	require.NoError(t, err)
	defer enc.Release()
	require.NoError(t, enc.Fit(ctx, values))
	require.NoError(t, store.SaveEncoder(ctx, "cities-proj", enc))

	loaded, err := store.LoadDistanceEncoder(ctx, "cities-proj")
	require.NoError(t, err)
	defer loaded.Release()

	want, err := enc.Transform(ctx, values)
	require.NoError(t, err)
	got, err := loaded.Transform(ctx, values)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		for j := range want[i] {
			assert.InDelta(t, want[i][j], got[i][j], 1e-9)
		}
	}
}

func TestStore_LoadWrongKind(t *testing.T) {
	ctx := context.Background()
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	enc, err := encoder.NewAgglomerative(2)
	require.NoError(t, err)
	defer enc.Release()
	require.NoError(t, enc.Fit(ctx, []string{"a", "b", "c"}))
	require.NoError(t, store.SaveEncoder(ctx, "cities", enc))

	_, err = store.LoadDistanceEncoder(ctx, "cities")
	assert.ErrorIs(t, err, encoder.ErrKindMismatch)
}

func TestStore_ModelLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	enc, err := encoder.NewAgglomerative(2)
	require.NoError(t, err)
	defer enc.Release()
	require.NoError(t, enc.Fit(ctx, []string{"a", "b", "c"}))

	require.NoError(t, store.SaveEncoder(ctx, "first", enc))
	require.NoError(t, store.SaveEncoder(ctx, "second", enc))

	infos, err := store.Models().ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "first", infos[0].Name)
	assert.Equal(t, "second", infos[1].Name)
	assert.Equal(t, core.KindAgglomerative, infos[0].Kind)

	require.NoError(t, store.Models().DeleteModel(ctx, "first"))
	_, err = store.LoadAgglomerativeEncoder(ctx, "first")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
