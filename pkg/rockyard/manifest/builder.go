package manifest

import (
	"fmt"
	"sort"

	"github.com/rockyard/rockyard/pkg/rockyard/search"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// Inspector reports what an installed package provides. Implementations
// read the package's rock manifest; a package whose rock manifest cannot
// be loaded is a hard error for the whole index build.
type Inspector interface {
	// Modules returns module name to install-relative path.
	Modules(name string, v version.Version) (map[string]string, error)
	// Commands returns command name to install-relative path.
	Commands(name string, v version.Version) (map[string]string, error)
}

// Store merges disk-search results into the manifest. Entries for each
// (name, version) present in the results replace that version's previous
// entry list; packages and versions absent from the results are left
// untouched. Installed entries are inspected for their modules and
// commands, which are registered in the derived tables and re-ranked.
//
// Any rock manifest load failure aborts the merge; no partially updated
// derived table is accepted silently.
func (m *Manifest) Store(results search.Results, insp Inspector) error {
	for name, versions := range results {
		for verStr, found := range versions {
			v, err := version.Parse(verStr)
			if err != nil {
				return fmt.Errorf("package %s: %w", name, err)
			}

			entries := make([]*Entry, 0, len(found))
			for _, res := range found {
				entry := &Entry{Arch: res.Arch}
				if res.Arch == ArchInstalled {
					if err := m.fillInstalled(entry, name, v, insp); err != nil {
						return err
					}
				}
				entries = append(entries, entry)
			}

			if m.Repository[name] == nil {
				m.Repository[name] = make(map[string][]*Entry)
			}
			m.Repository[name][verStr] = entries
		}
	}

	m.rankProviders()
	return nil
}

// fillInstalled asks the inspector for the package's items and registers
// it as a provider of each.
func (m *Manifest) fillInstalled(entry *Entry, name string, v version.Version, insp Inspector) error {
	mods, err := insp.Modules(name, v)
	if err != nil {
		return fmt.Errorf("%s/%s: rock_manifest not found: rock is not compatible with this tool version (%w)", name, v, err)
	}
	cmds, err := insp.Commands(name, v)
	if err != nil {
		return fmt.Errorf("%s/%s: rock_manifest not found: rock is not compatible with this tool version (%w)", name, v, err)
	}

	entry.Modules = mods
	entry.Commands = cmds

	p := Provider{Name: name, Version: v}
	for mod := range mods {
		m.Modules[mod] = append(m.Modules[mod], p)
	}
	for cmd := range cmds {
		m.Commands[cmd] = append(m.Commands[cmd], p)
	}
	return nil
}

// rankProviders sorts every provider list (name ascending, version
// descending) and then removes adjacent exact duplicates. Ordering uses
// the version comparator; deduplication deliberately uses string equality
// of the identifier, not the comparator.
func (m *Manifest) rankProviders() {
	for item, providers := range m.Modules {
		m.Modules[item] = rank(providers)
	}
	for item, providers := range m.Commands {
		m.Commands[item] = rank(providers)
	}
}

func rank(providers []Provider) []Provider {
	sort.SliceStable(providers, func(i, j int) bool {
		return compareProviders(providers[i], providers[j]) < 0
	})

	out := providers[:0]
	prev := ""
	for _, p := range providers {
		id := p.String()
		if id == prev {
			continue
		}
		out = append(out, p)
		prev = id
	}
	return out
}
