// Package manifest implements the repository index: which packages a
// repository provides, which modules and commands each installed package
// supplies, and how packages depend on each other. The index holds three
// tables; modules and commands are derived views over repository and are
// kept consistent whenever repository changes.
package manifest

import (
	"fmt"
	"strings"

	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// Architecture tags for repository entries. Anything else is treated as a
// binary platform tag (e.g. "linux-x86_64").
const (
	ArchInstalled = "installed"
	ArchRockspec  = "rockspec"
	ArchSrc       = "src"
)

// Provider identifies a package version that supplies a module or
// command. Its canonical string form is "name/version"; parsing and
// formatting happen only at this boundary.
type Provider struct {
	Name    string
	Version version.Version
}

// String returns the canonical "name/version" identifier.
func (p Provider) String() string {
	return p.Name + "/" + p.Version.String()
}

// ParseProvider parses a "name/version" identifier.
func ParseProvider(s string) (Provider, error) {
	idx := strings.IndexByte(s, '/')
	if idx <= 0 || idx == len(s)-1 {
		return Provider{}, fmt.Errorf("invalid provider identifier %q", s)
	}
	v, err := version.Parse(s[idx+1:])
	if err != nil {
		return Provider{}, fmt.Errorf("invalid provider identifier %q: %w", s, err)
	}
	return Provider{Name: s[:idx], Version: v}, nil
}

// MarshalJSON encodes the provider as its canonical string form.
func (p Provider) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.String())), nil
}

// UnmarshalJSON decodes a provider from its canonical string form.
func (p *Provider) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseProvider(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// compareProviders orders providers by package name ascending, and within
// the same name by version descending, so the first element of a sorted
// provider list is the active one.
func compareProviders(a, b Provider) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return b.Version.Compare(a.Version)
}

// Entry is one record in the repository table. Modules and Commands map
// item names to paths relative to the package's install directory and are
// only set for installed entries. Dependencies maps dependency package
// names to resolved versions, filled in by ScanDependencies.
type Entry struct {
	Arch         string            `json:"arch"`
	Modules      map[string]string `json:"modules,omitempty"`
	Commands     map[string]string `json:"commands,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Manifest is the index for one repository. Repository maps package name
// to version string to the entries found for that version. Modules and
// Commands map item names to their providers, ordered so the first
// provider is the active one.
type Manifest struct {
	Repository map[string]map[string][]*Entry `json:"repository"`
	Modules    map[string][]Provider          `json:"modules"`
	Commands   map[string][]Provider          `json:"commands"`
}

// New creates an empty manifest.
func New() *Manifest {
	return &Manifest{
		Repository: make(map[string]map[string][]*Entry),
		Modules:    make(map[string][]Provider),
		Commands:   make(map[string][]Provider),
	}
}
