package manifest

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rockyard/rockyard/pkg/rockyard/search"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// fakeResolver returns canned results keyed by "name/version".
type fakeResolver struct {
	deps    map[string]map[string]string
	missing map[string][]string
	calls   []string
}

func (f *fakeResolver) Scan(m *Manifest, name string, v version.Version, mode DepMode) (map[string]string, []string) {
	key := name + "/" + v.String()
	f.calls = append(f.calls, key)
	return f.deps[key], f.missing[key]
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func installedManifest(t *testing.T, pkgs map[string]string) *Manifest {
	t.Helper()
	results := search.Results{}
	insp := &fakeInspector{modules: map[string]map[string]string{}, commands: map[string]map[string]string{}}
	for name, ver := range pkgs {
		results.Add(name, ver, search.Result{Arch: ArchInstalled})
	}
	m := New()
	require.NoError(t, m.Store(results, insp))
	return m
}

func TestScanDependencies(t *testing.T) {
	t.Parallel()

	t.Run("stores resolved map and drops self edge", func(t *testing.T) {
		t.Parallel()
		m := installedManifest(t, map[string]string{"p": "1.0"})
		r := &fakeResolver{deps: map[string]map[string]string{
			"p/1.0": {"lpeg": "1.0.2-1", "p": "1.0"},
		}}

		m.ScanDependencies(r, DepModeOne, testLogger())

		got := m.Repository["p"]["1.0"][0].Dependencies
		assert.Equal(t, map[string]string{"lpeg": "1.0.2-1"}, got)
	})

	t.Run("mode none skips resolution", func(t *testing.T) {
		t.Parallel()
		m := installedManifest(t, map[string]string{"p": "1.0"})
		r := &fakeResolver{}

		m.ScanDependencies(r, DepModeNone, testLogger())

		assert.Empty(t, r.calls)
		assert.Nil(t, m.Repository["p"]["1.0"][0].Dependencies)
	})

	t.Run("unloadable spec is a diagnostic, other packages proceed", func(t *testing.T) {
		t.Parallel()
		m := installedManifest(t, map[string]string{"bad": "1.0", "good": "1.0"})
		r := &fakeResolver{deps: map[string]map[string]string{
			"good/1.0": {"dep": "2.0"},
		}}

		m.ScanDependencies(r, DepModeAll, testLogger())

		assert.Nil(t, m.Repository["bad"]["1.0"][0].Dependencies)
		assert.Equal(t, map[string]string{"dep": "2.0"}, m.Repository["good"]["1.0"][0].Dependencies)
	})

	t.Run("non-installed entries are not scanned", func(t *testing.T) {
		t.Parallel()
		results := search.Results{}
		results.Add("q", "1.0", search.Result{Arch: ArchRockspec})
		m := New()
		require.NoError(t, m.Store(results, &fakeInspector{}))

		r := &fakeResolver{}
		m.ScanDependencies(r, DepModeOne, testLogger())
		assert.Empty(t, r.calls)
	})
}

func TestParseDepMode(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"one", "all", "order", "none"} {
		mode, ok := ParseDepMode(s)
		assert.True(t, ok)
		assert.Equal(t, DepMode(s), mode)
	}
	_, ok := ParseDepMode("everything")
	assert.False(t, ok)
}
