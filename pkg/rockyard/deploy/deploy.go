// Package deploy maps deployed files back to the packages that own them.
// Deployed files live under three roots: the modules dir (lua), the libs
// dir (compiled modules) and the commands dir (bin). Lookups are
// read-only queries against a tree's persisted manifest.
package deploy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/repo"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// ErrUntracked is returned when a deployed file has no registered
// provider, or the manifest itself cannot be loaded.
var ErrUntracked = errors.New("file is not tracked by any installed package")

// Roots are the three deployment roots of one tree.
type Roots struct {
	LuaDir string
	LibDir string
	BinDir string
}

type itemKind int

const (
	kindModule itemKind = iota
	kindCommand
)

// Locator resolves ownership queries against one tree's manifest.
type Locator struct {
	roots        Roots
	manifestPath string
}

// NewLocator creates a locator for the given deployment roots and
// persisted manifest path.
func NewLocator(roots Roots, manifestPath string) *Locator {
	return &Locator{roots: roots, manifestPath: manifestPath}
}

// FindCurrentProvider returns the package that currently owns the
// deployed file at path: the highest-ranked provider of the module or
// command the file realizes. ErrUntracked is returned when the manifest
// is unreadable or nothing provides the item.
func (l *Locator) FindCurrentProvider(path string) (manifest.Provider, error) {
	providers, err := l.providersFor(path)
	if err != nil {
		return manifest.Provider{}, err
	}
	return providers[0], nil
}

// FindNextProvider returns the provider that would become the owner of
// the deployed file if the current one were removed. ok is false when no
// further provider exists; that is an empty result, not an error.
func (l *Locator) FindNextProvider(path string) (next manifest.Provider, ok bool, err error) {
	providers, err := l.providersFor(path)
	if err != nil {
		return manifest.Provider{}, false, err
	}
	if len(providers) < 2 {
		return manifest.Provider{}, false, nil
	}
	return providers[1], true, nil
}

func (l *Locator) providersFor(path string) ([]manifest.Provider, error) {
	kind, key := l.itemKey(path)

	m, err := manifest.Load(l.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUntracked, err)
	}

	var providers []manifest.Provider
	switch kind {
	case kindModule:
		providers = m.Modules[key]
	case kindCommand:
		providers = m.Commands[key]
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUntracked, path)
	}
	return providers, nil
}

// FindConflictingFile returns the deployed path of the named package's
// own copy of the item that the given file realizes, used when resolving
// deploy conflicts. The package's manifest entry is assumed to contain
// the item.
func (l *Locator) FindConflictingFile(name string, v version.Version, file string) (string, error) {
	kind, key := l.itemKey(file)

	m, err := manifest.Load(l.manifestPath)
	if err != nil {
		return "", fmt.Errorf("load manifest: %w", err)
	}

	for _, entry := range m.Repository[name][v.String()] {
		if entry.Arch != manifest.ArchInstalled {
			continue
		}
		var rel string
		switch kind {
		case kindModule:
			rel = entry.Modules[key]
		case kindCommand:
			rel = entry.Commands[key]
		}
		if rel != "" {
			return l.deployedPath(rel), nil
		}
	}
	return "", fmt.Errorf("%s/%s does not provide %q", name, v, key)
}

// itemKey maps a deployed file path to the item it realizes. A path
// outside every deployment root is a caller bug, not a data problem.
func (l *Locator) itemKey(path string) (itemKind, string) {
	if rel, ok := under(l.roots.BinDir, path); ok {
		return kindCommand, rel
	}
	if rel, ok := under(l.roots.LuaDir, path); ok {
		return kindModule, repo.ModuleNameForPath(rel)
	}
	if rel, ok := under(l.roots.LibDir, path); ok {
		return kindModule, repo.ModuleNameForPath(rel)
	}
	panic(fmt.Sprintf("deploy: %q is not under any deployment root", path))
}

// deployedPath maps an install-relative item path (e.g.
// "lua/socket/http.lua") onto the corresponding deployment root.
func (l *Locator) deployedPath(rel string) string {
	category, rest, _ := strings.Cut(filepath.ToSlash(rel), "/")
	switch category {
	case repo.LuaDir:
		return filepath.Join(l.roots.LuaDir, filepath.FromSlash(rest))
	case repo.LibDir:
		return filepath.Join(l.roots.LibDir, filepath.FromSlash(rest))
	case repo.BinDir:
		return filepath.Join(l.roots.BinDir, filepath.FromSlash(rest))
	}
	return filepath.Join(l.roots.LuaDir, filepath.FromSlash(rel))
}

// under returns path relative to root when path lies beneath it.
func under(root, path string) (string, bool) {
	if root == "" {
		return "", false
	}
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	prefix := root + string(filepath.Separator)
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	return filepath.ToSlash(strings.TrimPrefix(path, prefix)), true
}
