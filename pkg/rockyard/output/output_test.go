package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

func sampleManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m := manifest.New()
	m.Repository["lpeg"] = map[string][]*manifest.Entry{
		"1.0.2-1": {{
			Arch:    manifest.ArchInstalled,
			Modules: map[string]string{"lpeg": "lpeg.lua"},
		}},
	}
	m.Repository["luasocket"] = map[string][]*manifest.Entry{
		"3.0-1": {
			{Arch: manifest.ArchRockspec},
			{Arch: manifest.ArchSrc},
		},
	}
	m.Modules["lpeg"] = []manifest.Provider{{Name: "lpeg", Version: version.MustParse("1.0.2-1")}}
	return m
}

func TestFromManifest(t *testing.T) {
	t.Parallel()

	r := FromManifest("/srv/rocks", sampleManifest(t))

	assert.Equal(t, "/srv/rocks", r.Location)
	require.Len(t, r.Packages, 3)
	// Sorted by name, version, arch.
	assert.Equal(t, "lpeg", r.Packages[0].Name)
	assert.Equal(t, "luasocket", r.Packages[1].Name)
	assert.Equal(t, manifest.ArchRockspec, r.Packages[1].Arch)
	assert.Equal(t, manifest.ArchSrc, r.Packages[2].Arch)
	assert.Equal(t, 2, r.Stats.Packages)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("plain", func() Formatter { return &PlainFormatter{} })

	f, err := reg.Get("plain")
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)

	_, err = reg.Get("nope")
	assert.Error(t, err)

	assert.Equal(t, []string{"plain"}, reg.Available())
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"plain", "pretty", "json"} {
		f, err := Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f, name)
	}
}

func TestPlainFormatter(t *testing.T) {
	t.Parallel()

	r := FromManifest("/srv/rocks", sampleManifest(t))

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "lpeg")
	assert.Contains(t, out, "1.0.2-1")
	assert.Contains(t, out, "luasocket")
}

func TestPrettyFormatter(t *testing.T) {
	t.Parallel()

	r := FromManifest("/srv/rocks", sampleManifest(t))
	r.Warnings = []string{"skipped bad rockspec"}

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "/srv/rocks")
	assert.Contains(t, out, "lpeg")
	assert.Contains(t, out, "skipped bad rockspec")
}

func TestPrettyFormatterEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, &Report{Location: "x"}))
	assert.Contains(t, buf.String(), "No packages found")
}

func TestJSONFormatter(t *testing.T) {
	t.Parallel()

	r := FromManifest("/srv/rocks", sampleManifest(t))
	r.Cached = true

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, r))

	var decoded jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Packages, 3)
	assert.Equal(t, 2, decoded.Stats.Packages)
	assert.True(t, decoded.Meta.Cached)
	assert.Equal(t, "/srv/rocks", decoded.Meta.Location)
}

func TestJSONFormatterEmptyPackages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, &Report{}))
	assert.Contains(t, buf.String(), `"packages": []`)
}
