package repo

import (
	"strings"

	"github.com/rockyard/rockyard/pkg/rockyard/rockmanifest"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// Inspector answers what an installed package provides by reading its
// rock manifest through a shared cache. It implements
// manifest.Inspector.
type Inspector struct {
	tree  Tree
	cache *rockmanifest.Cache
}

// NewInspector creates an inspector for one rocks tree.
func NewInspector(tree Tree, cache *rockmanifest.Cache) *Inspector {
	return &Inspector{tree: tree, cache: cache}
}

// Modules returns module name to install-relative path for every module
// file the package installed under its lua/ and lib/ directories.
func (i *Inspector) Modules(name string, v version.Version) (map[string]string, error) {
	tree, err := i.load(name, v)
	if err != nil {
		return nil, err
	}

	modules := make(map[string]string)
	tree.Walk(func(relPath, digest string) {
		category, rest, ok := splitCategory(relPath)
		if !ok || (category != LuaDir && category != LibDir) {
			return
		}
		modules[ModuleNameForPath(rest)] = relPath
	})
	return modules, nil
}

// Commands returns command name to install-relative path for every file
// the package installed under its bin/ directory.
func (i *Inspector) Commands(name string, v version.Version) (map[string]string, error) {
	tree, err := i.load(name, v)
	if err != nil {
		return nil, err
	}

	commands := make(map[string]string)
	tree.Walk(func(relPath, digest string) {
		category, rest, ok := splitCategory(relPath)
		if !ok || category != BinDir || strings.Contains(rest, "/") {
			return
		}
		commands[rest] = relPath
	})
	return commands, nil
}

func (i *Inspector) load(name string, v version.Version) (rockmanifest.Tree, error) {
	return i.cache.Load(i.tree.InstallDir(name, v), name, v)
}

// splitCategory splits an install-relative path into its top-level
// deployment category and the remainder.
func splitCategory(relPath string) (category, rest string, ok bool) {
	idx := strings.IndexByte(relPath, '/')
	if idx <= 0 {
		return "", "", false
	}
	return relPath[:idx], relPath[idx+1:], true
}
