package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/persist"
	"github.com/rockyard/rockyard/pkg/rockyard/repo"
	"github.com/rockyard/rockyard/pkg/rockyard/rockspec"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// installSpec writes a rockspec into the package's install dir in tree.
func installSpec(t *testing.T, tree repo.Tree, name, ver string, deps []string) {
	t.Helper()
	v := version.MustParse(ver)
	spec := rockspec.Rockspec{Package: name, Version: ver, Dependencies: deps}
	require.NoError(t, persist.Save(tree.InstallDir(name, v), name+"-"+ver+".rockspec", spec))
}

// withInstalled returns a manifest with installed entries for the given
// name/version pairs.
func withInstalled(pairs map[string][]string) *manifest.Manifest {
	m := manifest.New()
	for name, versions := range pairs {
		m.Repository[name] = make(map[string][]*manifest.Entry)
		for _, ver := range versions {
			m.Repository[name][ver] = []*manifest.Entry{{Arch: manifest.ArchInstalled}}
		}
	}
	return m
}

func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("resolves highest satisfying version", func(t *testing.T) {
		t.Parallel()
		tree := repo.Tree{Root: t.TempDir()}
		installSpec(t, tree, "app", "1.0-1", []string{"lua >= 5.1", "lpeg >= 1.0"})

		m := withInstalled(map[string][]string{
			"app":  {"1.0-1"},
			"lpeg": {"1.0.1-1", "1.1.0-1", "0.9-1"},
		})

		r := New([]repo.Tree{tree}, 0, rockspec.NewCache())
		deps, missing := r.Scan(m, "app", version.MustParse("1.0-1"), manifest.DepModeOne)

		require.NotNil(t, deps)
		assert.Empty(t, missing)
		assert.Equal(t, "1.1.0-1", deps["lpeg"])
		assert.Equal(t, ">= 5.1", deps["lua"])
	})

	t.Run("missing dependency reported", func(t *testing.T) {
		t.Parallel()
		tree := repo.Tree{Root: t.TempDir()}
		installSpec(t, tree, "app", "1.0-1", []string{"luafilesystem >= 1.8"})

		m := withInstalled(map[string][]string{"app": {"1.0-1"}})

		r := New([]repo.Tree{tree}, 0, rockspec.NewCache())
		deps, missing := r.Scan(m, "app", version.MustParse("1.0-1"), manifest.DepModeOne)

		require.NotNil(t, deps)
		assert.Equal(t, []string{"luafilesystem"}, missing)
	})

	t.Run("no loadable rockspec yields nil", func(t *testing.T) {
		t.Parallel()
		tree := repo.Tree{Root: t.TempDir()}
		m := withInstalled(map[string][]string{"ghost": {"1.0"}})

		r := New([]repo.Tree{tree}, 0, rockspec.NewCache())
		deps, missing := r.Scan(m, "ghost", version.MustParse("1.0"), manifest.DepModeOne)

		assert.Nil(t, deps)
		assert.Nil(t, missing)
	})

	t.Run("mode all consults other trees", func(t *testing.T) {
		t.Parallel()
		primary := repo.Tree{Root: t.TempDir(), Priority: 0}
		system := repo.Tree{Root: t.TempDir(), Priority: 1}
		installSpec(t, primary, "app", "1.0-1", []string{"lpeg >= 1.0"})

		// lpeg lives only in the system tree's manifest.
		sys := withInstalled(map[string][]string{"lpeg": {"1.0.2-1"}})
		require.NoError(t, sys.Save(system.RocksDir()))

		m := withInstalled(map[string][]string{"app": {"1.0-1"}})
		r := New([]repo.Tree{primary, system}, 0, rockspec.NewCache())

		deps, missing := r.Scan(m, "app", version.MustParse("1.0-1"), manifest.DepModeOne)
		require.NotNil(t, deps)
		assert.Equal(t, []string{"lpeg"}, missing, "mode one must not see the system tree")

		deps, missing = r.Scan(m, "app", version.MustParse("1.0-1"), manifest.DepModeAll)
		require.NotNil(t, deps)
		assert.Empty(t, missing)
		assert.Equal(t, "1.0.2-1", deps["lpeg"])
	})

	t.Run("mode order skips higher priority trees", func(t *testing.T) {
		t.Parallel()
		lower := repo.Tree{Root: t.TempDir(), Priority: 0}
		higher := repo.Tree{Root: t.TempDir(), Priority: 2}
		installSpec(t, lower, "app", "1.0-1", []string{"lpeg >= 1.0"})

		dep := withInstalled(map[string][]string{"lpeg": {"1.0.2-1"}})
		require.NoError(t, dep.Save(lower.RocksDir()))

		m := withInstalled(map[string][]string{"app": {"1.0-1"}})
		r := New([]repo.Tree{lower, higher}, 1, rockspec.NewCache())

		// Only trees with priority >= 1 are considered; lpeg sits in the
		// priority-0 tree.
		_, missing := r.Scan(m, "app", version.MustParse("1.0-1"), manifest.DepModeOrder)
		assert.Equal(t, []string{"lpeg"}, missing)
	})
}
