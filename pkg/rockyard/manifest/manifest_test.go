package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rockyard/rockyard/pkg/rockyard/persist"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

func sampleManifest() *Manifest {
	m := New()
	m.Repository["p"] = map[string][]*Entry{
		"2.0": {{
			Arch:         ArchInstalled,
			Modules:      map[string]string{"m": "lua/m.lua"},
			Commands:     map[string]string{"ptool": "bin/ptool"},
			Dependencies: map[string]string{"lpeg": "1.0.2-1"},
		}},
		"1.0": {{Arch: ArchRockspec}},
	}
	m.Modules["m"] = []Provider{{Name: "p", Version: version.MustParse("2.0")}}
	m.Commands["ptool"] = []Provider{{Name: "p", Version: version.MustParse("2.0")}}
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := sampleManifest()
	require.NoError(t, m.Save(dir))

	loaded, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)

	assert.Equal(t, m.Stats(), loaded.Stats())
	require.Len(t, loaded.Modules["m"], 1)
	assert.Equal(t, "p/2.0", loaded.Modules["m"][0].String())
	entry := loaded.Repository["p"]["2.0"][0]
	assert.Equal(t, "lua/m.lua", entry.Modules["m"])
	assert.Equal(t, "1.0.2-1", entry.Dependencies["lpeg"])
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

// A stale temp file from an interrupted writer must not affect readers of
// the live manifest.
func TestLoadIgnoresInterruptedWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, sampleManifest().Save(dir))

	stale := filepath.Join(dir, ".manifest.0000.tmp")
	require.NoError(t, os.WriteFile(stale, []byte(`{"repository":{`), 0o644))

	loaded, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Stats().Packages)
}

func TestClone(t *testing.T) {
	t.Parallel()

	m := sampleManifest()
	c := m.Clone()

	// Mutating the clone must not leak into the original.
	delete(c.Repository["p"], "1.0")
	c.Repository["p"]["2.0"][0].Dependencies["new"] = "1.0"
	c.Modules["m"] = nil

	assert.Len(t, m.Repository["p"], 2)
	assert.NotContains(t, m.Repository["p"]["2.0"][0].Dependencies, "new")
	assert.Len(t, m.Modules["m"], 1)
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := sampleManifest().Stats()
	assert.Equal(t, Stats{Packages: 1, Versions: 2, Modules: 1, Commands: 1}, s)
}

func TestVersionedFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "manifest-5.1", VersionedFileName(version.MustParse("5.1")))
}
