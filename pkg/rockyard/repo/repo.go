// Package repo models rocks trees (the directories packages are
// installed into) and derives what an installed package provides from
// its rock manifest.
package repo

import (
	"path/filepath"
	"strings"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// Subdirectories of a package's install dir, by deployment category.
const (
	LuaDir = "lua"
	LibDir = "lib"
	BinDir = "bin"
)

// Tree is one configured rocks tree. Priority orders trees for
// dependency scanning; lower values are consulted first and the tree
// with priority 0 is the default one.
type Tree struct {
	Root     string
	Priority int
}

// RocksDir returns the directory holding per-package install dirs and
// the tree's manifest.
func (t Tree) RocksDir() string {
	return filepath.Join(t.Root, "rocks")
}

// ManifestPath returns the path of the tree's persisted manifest.
func (t Tree) ManifestPath() string {
	return filepath.Join(t.RocksDir(), manifest.FileName)
}

// InstallDir returns the install directory for a package version.
func (t Tree) InstallDir(name string, v version.Version) string {
	return filepath.Join(t.RocksDir(), name, v.String())
}

// RockspecPath returns the path of the rockspec stored alongside an
// installed package.
func (t Tree) RockspecPath(name string, v version.Version) string {
	return filepath.Join(t.InstallDir(name, v), name+"-"+v.String()+".rockspec")
}

// ModuleNameForPath converts a file path relative to a deployment
// category into a module name: slashes become dots and the language or
// shared-object extension is stripped. "socket/init.lua" collapses to
// "socket".
func ModuleNameForPath(relPath string) string {
	name := filepath.ToSlash(relPath)
	for _, ext := range []string{".lua", ".so", ".dll"} {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	name = strings.TrimSuffix(name, "/init")
	return strings.ReplaceAll(name, "/", ".")
}
