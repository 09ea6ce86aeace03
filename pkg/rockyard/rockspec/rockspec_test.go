package rockspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rockyard/rockyard/pkg/rockyard/persist"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

func TestParseDependency(t *testing.T) {
	t.Parallel()

	t.Run("constrained", func(t *testing.T) {
		t.Parallel()
		dep, err := ParseDependency("lpeg >= 1.0.1")
		require.NoError(t, err)
		assert.Equal(t, "lpeg", dep.Name)
		assert.True(t, dep.Allows(version.MustParse("1.0.2")))
		assert.False(t, dep.Allows(version.MustParse("0.12")))
	})

	t.Run("unconstrained", func(t *testing.T) {
		t.Parallel()
		dep, err := ParseDependency("luasocket")
		require.NoError(t, err)
		assert.True(t, dep.Unconstrained)
		assert.True(t, dep.Allows(version.MustParse("0.1")))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := ParseDependency("   ")
		assert.Error(t, err)
	})
}

func TestSupportsTarget(t *testing.T) {
	t.Parallel()

	spec := &Rockspec{
		Package:      "demo",
		Version:      "1.0-1",
		Dependencies: []string{"lua >= 5.2", "lpeg >= 1.0"},
	}

	assert.False(t, spec.SupportsTarget(version.MustParse("5.1")))
	assert.True(t, spec.SupportsTarget(version.MustParse("5.2")))
	assert.True(t, spec.SupportsTarget(version.MustParse("5.3")))

	t.Run("no interpreter dependency means compatible", func(t *testing.T) {
		t.Parallel()
		s := &Rockspec{Package: "demo", Version: "1.0-1", Dependencies: []string{"lpeg >= 1.0"}}
		assert.True(t, s.SupportsTarget(version.MustParse("5.1")))
	})
}

func TestCacheLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := Rockspec{Package: "demo", Version: "1.0-1", Dependencies: []string{"lua >= 5.1"}}
	require.NoError(t, persist.Save(dir, "demo-1.0-1.rockspec", spec))
	path := filepath.Join(dir, "demo-1.0-1.rockspec")

	cache := NewCache()
	first, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", first.Package)

	// Second load must come from memory: removing the file must not matter.
	require.NoError(t, os.Remove(path))
	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCacheLoadMissing(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	_, err := cache.Load(filepath.Join(t.TempDir(), "absent.rockspec"))
	assert.Error(t, err)
}
