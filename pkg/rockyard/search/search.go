// Package search finds packages on disk: installed rocks in a tree's
// rocks directory and rockspec/rock files in a repository directory. Its
// results feed the manifest index builder.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rockyard/rockyard/pkg/rockyard/rockmanifest"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// Result is one finding for a package version.
type Result struct {
	// Arch is the entry's architecture tag: "installed", "rockspec",
	// "src" or a binary platform tag.
	Arch string
	// Location is the directory the finding came from: the rocks dir for
	// installed packages, the repository dir for files.
	Location string
}

// Results maps package name to version string to findings.
type Results map[string]map[string][]Result

// Add records a finding.
func (r Results) Add(name, ver string, res Result) {
	versions, ok := r[name]
	if !ok {
		versions = make(map[string][]Result)
		r[name] = versions
	}
	versions[ver] = append(versions[ver], res)
}

// Query restricts a disk search. Zero values match everything.
type Query struct {
	// Name matches a package name exactly (case-insensitive).
	Name string
	// Arch restricts findings to one architecture tag.
	Arch string
}

func (q Query) matchName(name string) bool {
	return q.Name == "" || strings.EqualFold(q.Name, name)
}

func (q Query) matchArch(arch string) bool {
	return q.Arch == "" || q.Arch == arch
}

// DiskSearch scans repoDir for packages matching the query. Installed
// packages are directories laid out as <name>/<version>/ containing a
// rock_manifest file; rockspecs and rock archives are flat files named
// <name>-<version>.<suffix>.
func DiskSearch(repoDir string, q Query) (Results, error) {
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", repoDir, err)
	}

	results := Results{}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := scanInstalledDir(repoDir, entry.Name(), q, results); err != nil {
				return nil, err
			}
			continue
		}
		addFileResult(repoDir, entry.Name(), q, results)
	}

	return results, nil
}

// scanInstalledDir collects installed versions under repoDir/name.
func scanInstalledDir(repoDir, name string, q Query, results Results) error {
	if !q.matchName(name) || !q.matchArch("installed") {
		return nil
	}

	versions, err := os.ReadDir(filepath.Join(repoDir, name))
	if err != nil {
		return fmt.Errorf("search %s/%s: %w", repoDir, name, err)
	}

	for _, verEntry := range versions {
		if !verEntry.IsDir() {
			continue
		}
		ver := verEntry.Name()
		if _, err := version.Parse(ver); err != nil {
			continue
		}
		// Only directories carrying a rock_manifest count as installed.
		indexPath := filepath.Join(repoDir, name, ver, rockmanifest.FileName)
		if _, err := os.Stat(indexPath); err != nil {
			continue
		}
		results.Add(name, ver, Result{Arch: "installed", Location: repoDir})
	}

	return nil
}

// addFileResult parses a flat repository file name into a finding.
func addFileResult(repoDir, filename string, q Query, results Results) {
	name, ver, arch, ok := parseFilename(filename)
	if !ok || !q.matchName(name) || !q.matchArch(arch) {
		return
	}
	results.Add(name, ver, Result{Arch: arch, Location: repoDir})
}

// parseFilename splits "<name>-<version>.rockspec" or
// "<name>-<version>.<arch>.rock" into its parts. The version starts at
// the first dash followed by a digit, since package names may themselves
// contain dashes.
func parseFilename(filename string) (name, ver, arch string, ok bool) {
	var base string
	switch {
	case strings.HasSuffix(filename, ".rockspec"):
		base = strings.TrimSuffix(filename, ".rockspec")
		arch = "rockspec"
	case strings.HasSuffix(filename, ".rock"):
		base = strings.TrimSuffix(filename, ".rock")
		idx := strings.LastIndexByte(base, '.')
		if idx <= 0 {
			return "", "", "", false
		}
		arch = base[idx+1:]
		base = base[:idx]
	default:
		return "", "", "", false
	}

	for i := 0; i < len(base)-1; i++ {
		if base[i] != '-' || base[i+1] < '0' || base[i+1] > '9' {
			continue
		}
		// A digit-led segment that is not a valid version is part of the
		// name; keep scanning for a later split.
		if _, err := version.Parse(base[i+1:]); err != nil {
			continue
		}
		return base[:i], base[i+1:], arch, true
	}
	return "", "", "", false
}
