package manifest

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// DepMode controls which configured rocks trees a dependency scan
// considers.
type DepMode string

const (
	// DepModeOne considers only the default tree.
	DepModeOne DepMode = "one"
	// DepModeAll considers every configured tree.
	DepModeAll DepMode = "all"
	// DepModeOrder considers trees at or above the current priority.
	DepModeOrder DepMode = "order"
	// DepModeNone skips dependency resolution entirely.
	DepModeNone DepMode = "none"
)

// ParseDepMode validates a dependency mode string.
func ParseDepMode(s string) (DepMode, bool) {
	switch DepMode(s) {
	case DepModeOne, DepModeAll, DepModeOrder, DepModeNone:
		return DepMode(s), true
	}
	return "", false
}

// Resolver computes the resolved dependency map for one installed
// package version. A nil deps map means the package has no loadable
// specification at all (a tree inconsistency, not a failure). Names in
// missing are transitively required packages absent from every
// considered tree.
type Resolver interface {
	Scan(m *Manifest, name string, v version.Version, mode DepMode) (deps map[string]string, missing []string)
}

// ScanDependencies recomputes the dependency map of every installed entry
// in the manifest. Inconsistencies are diagnostics on the logger, never
// errors: a manifest with missing dependencies is still usable.
func (m *Manifest) ScanDependencies(r Resolver, mode DepMode, logger *log.Logger) {
	if mode == DepModeNone {
		return
	}

	for _, name := range sortedKeys(m.Repository) {
		for verStr, entries := range m.Repository[name] {
			v, err := version.Parse(verStr)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if entry.Arch != ArchInstalled {
					continue
				}
				m.scanEntry(entry, r, name, v, mode, logger)
			}
		}
	}
}

func (m *Manifest) scanEntry(entry *Entry, r Resolver, name string, v version.Version, mode DepMode, logger *log.Logger) {
	deps, missing := r.Scan(m, name, v, mode)
	if deps == nil {
		logger.Warn("inconsistency in the rocks tree: version has no rockspec",
			"package", name, "version", v.String())
		return
	}

	// A package never depends on itself, even if the resolver says so.
	delete(deps, name)
	entry.Dependencies = deps

	for _, dep := range missing {
		logger.Warn("dependency is not installed in any rocks tree",
			"package", name, "version", v.String(), "dependency", dep)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
