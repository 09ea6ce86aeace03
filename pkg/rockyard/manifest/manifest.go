package manifest

import (
	"fmt"

	"github.com/rockyard/rockyard/pkg/rockyard/persist"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// FileName is the default name of a persisted manifest in a repository
// root. Remote multi-version repositories additionally serve
// "manifest-<version>" variants.
const FileName = "manifest"

// VersionedFileName returns the filename of the manifest variant filtered
// for one target interpreter version.
func VersionedFileName(target version.Version) string {
	return FileName + "-" + target.String()
}

// Load reads a persisted manifest from path.
func Load(path string) (*Manifest, error) {
	m := New()
	if err := persist.Load(path, m); err != nil {
		return nil, err
	}
	// Maps omitted from older files must still be usable.
	if m.Repository == nil {
		m.Repository = make(map[string]map[string][]*Entry)
	}
	if m.Modules == nil {
		m.Modules = make(map[string][]Provider)
	}
	if m.Commands == nil {
		m.Commands = make(map[string][]Provider)
	}
	return m, nil
}

// Save atomically writes the manifest as dir/manifest.
func (m *Manifest) Save(dir string) error {
	return m.SaveAs(dir, FileName)
}

// SaveAs atomically writes the manifest under a specific filename, used
// for the per-target "manifest-<version>" variants.
func (m *Manifest) SaveAs(dir, name string) error {
	if err := persist.Save(dir, name, m); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// Clone returns a deep copy. Filter passes for different target versions
// each operate on their own copy of the full manifest.
func (m *Manifest) Clone() *Manifest {
	out := New()
	for name, versions := range m.Repository {
		vs := make(map[string][]*Entry, len(versions))
		for ver, entries := range versions {
			list := make([]*Entry, len(entries))
			for i, e := range entries {
				list[i] = e.clone()
			}
			vs[ver] = list
		}
		out.Repository[name] = vs
	}
	for item, providers := range m.Modules {
		out.Modules[item] = append([]Provider(nil), providers...)
	}
	for item, providers := range m.Commands {
		out.Commands[item] = append([]Provider(nil), providers...)
	}
	return out
}

func (e *Entry) clone() *Entry {
	out := &Entry{Arch: e.Arch}
	out.Modules = cloneStringMap(e.Modules)
	out.Commands = cloneStringMap(e.Commands)
	out.Dependencies = cloneStringMap(e.Dependencies)
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Stats summarizes a manifest for status output.
type Stats struct {
	Packages int
	Versions int
	Modules  int
	Commands int
}

// Stats counts packages, package versions, distinct modules and distinct
// commands in the manifest.
func (m *Manifest) Stats() Stats {
	s := Stats{
		Packages: len(m.Repository),
		Modules:  len(m.Modules),
		Commands: len(m.Commands),
	}
	for _, versions := range m.Repository {
		s.Versions += len(versions)
	}
	return s
}
