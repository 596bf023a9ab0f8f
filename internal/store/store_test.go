package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/hms-console/internal/store"
)

func exerciseStore(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "token")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetMulti(ctx, map[string][]byte{
		"token": []byte("abc"),
		"user":  []byte(`{"id":1}`),
	}))

	v, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))

	require.NoError(t, s.Delete(ctx, "token", "user", "missing"))
	_, err = s.Get(ctx, "user")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// deleting twice is harmless
	require.NoError(t, s.Delete(ctx, "token", "user"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, store.NewMemoryStore("hms:test"))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	a := store.NewMemoryStore("hms:a")
	require.NoError(t, a.SetMulti(ctx, map[string][]byte{"token": []byte("x")}))

	v, err := a.Get(ctx, "token")
	require.NoError(t, err)
	v[0] = 'y'

	again, err := a.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "x", string(again), "returned slices must not alias stored data")
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := store.NewFileStore(path, "hms:test")
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreSurvivesReopenAndSharesFileAcrossScopes(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	ward, err := store.NewFileStore(path, "hms:ward")
	require.NoError(t, err)
	clinic, err := store.NewFileStore(path, "hms:clinic")
	require.NoError(t, err)

	require.NoError(t, ward.SetMulti(ctx, map[string][]byte{"token": []byte("ward-token")}))
	require.NoError(t, clinic.SetMulti(ctx, map[string][]byte{"token": []byte("clinic-token")}))

	reopened, err := store.NewFileStore(path, "hms:ward")
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "ward-token", string(v))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := store.NewFileStore(path, "")
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "token")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}
