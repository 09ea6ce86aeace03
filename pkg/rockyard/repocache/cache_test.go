package repocache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()

	key := MakeKey("https://rocks.example.org/repo", "5.4")
	loc, target := ParseKey(key)
	assert.Equal(t, "https://rocks.example.org/repo", loc)
	assert.Equal(t, "5.4", target)
}

func TestStoreGetPut(t *testing.T) {
	store, err := OpenStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("loc", "5.1", []byte("payload")))

	got, err := store.Get("loc", "5.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	_, err = store.Get("loc", "5.4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	store, err := OpenStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("loc", "5.1", []byte("payload")))
	require.NoError(t, store.Delete("loc", "5.1"))

	_, err = store.Get("loc", "5.1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func sampleManifest() *manifest.Manifest {
	m := manifest.New()
	m.Repository["p"] = map[string][]*manifest.Entry{
		"1.0": {{Arch: manifest.ArchInstalled, Modules: map[string]string{"m": "lua/m.lua"}}},
	}
	m.Modules["m"] = []manifest.Provider{{Name: "p", Version: version.MustParse("1.0")}}
	return m
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := Open(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	_, ok := cache.Get("https://rocks.example.org", "5.1")
	assert.False(t, ok)

	require.NoError(t, cache.Put("https://rocks.example.org", "5.1", sampleManifest()))

	got, ok := cache.Get("https://rocks.example.org", "5.1")
	require.True(t, ok)
	assert.Equal(t, 1, got.Stats().Packages)
	require.Len(t, got.Modules["m"], 1)
	assert.Equal(t, "p/1.0", got.Modules["m"][0].String())
}

func TestCachePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	cache, err := Open(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, cache.Put("loc", "5.1", sampleManifest()))
	require.NoError(t, cache.Close())

	reopened, err := Open(dir, time.Hour)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("loc", "5.1")
	require.True(t, ok)
	assert.Equal(t, 1, got.Stats().Packages)
}

func TestCacheInvalidate(t *testing.T) {
	cache, err := Open(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Put("loc", "5.1", sampleManifest()))
	require.NoError(t, cache.Invalidate("loc", "5.1"))

	_, ok := cache.Get("loc", "5.1")
	assert.False(t, ok)
}
