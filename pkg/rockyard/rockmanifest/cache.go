package rockmanifest

import (
	"fmt"
	"path/filepath"

	"github.com/rockyard/rockyard/pkg/rockyard/persist"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// Cache memoizes loaded rock manifests for the lifetime of a process,
// keyed by "name/version". Entries are never evicted: a package's file
// index only changes when the package is reinstalled, which happens in a
// fresh process. Not safe for concurrent use.
type Cache struct {
	entries map[string]Tree
}

// NewCache creates an empty rock manifest cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Tree)}
}

func cacheKey(name string, v version.Version) string {
	return name + "/" + v.String()
}

// Get returns the cached tree for a package, if present.
func (c *Cache) Get(name string, v version.Version) (Tree, bool) {
	tree, ok := c.entries[cacheKey(name, v)]
	return tree, ok
}

// Load returns the rock manifest for an installed package, consulting the
// in-memory cache before reading rock_manifest from the install directory.
func (c *Cache) Load(installDir, name string, v version.Version) (Tree, error) {
	if tree, ok := c.Get(name, v); ok {
		return tree, nil
	}

	var tree Tree
	path := filepath.Join(installDir, FileName)
	if err := persist.Load(path, &tree); err != nil {
		return nil, err
	}

	c.entries[cacheKey(name, v)] = tree
	return tree, nil
}

// Build scans an installed package's directory, persists the resulting
// tree as rock_manifest inside it, and caches it. Nothing is cached or
// persisted if the scan or the write fails.
func (c *Cache) Build(installDir, name string, v version.Version) (Tree, error) {
	tree, err := Scan(installDir)
	if err != nil {
		return nil, fmt.Errorf("build rock manifest for %s/%s: %w", name, v, err)
	}
	if err := persist.Save(installDir, FileName, tree); err != nil {
		return nil, fmt.Errorf("save rock manifest for %s/%s: %w", name, v, err)
	}

	c.entries[cacheKey(name, v)] = tree
	return tree, nil
}
