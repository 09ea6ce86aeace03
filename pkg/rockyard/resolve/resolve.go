// Package resolve computes resolved dependency chains for installed
// packages against the configured rocks trees. It implements
// manifest.Resolver.
package resolve

import (
	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/repo"
	"github.com/rockyard/rockyard/pkg/rockyard/rockspec"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// Resolver matches dependency constraints against installed package
// versions. The dependency mode decides which trees supply candidates:
// "one" uses only the manifest being scanned, "order" additionally uses
// trees at or above the current priority, "all" uses every tree.
type Resolver struct {
	trees    []repo.Tree
	current  int
	specs    *rockspec.Cache
	loaded   map[string]*manifest.Manifest
	loadFail map[string]bool
}

// New creates a resolver over the configured trees. current is the
// priority of the tree whose manifest is being scanned, used by the
// "order" mode.
func New(trees []repo.Tree, current int, specs *rockspec.Cache) *Resolver {
	return &Resolver{
		trees:    trees,
		current:  current,
		specs:    specs,
		loaded:   make(map[string]*manifest.Manifest),
		loadFail: make(map[string]bool),
	}
}

// Scan resolves the dependencies of one installed package version. A nil
// deps map means no rockspec could be loaded from any tree. Dependencies
// that no considered tree satisfies are returned in missing. The
// interpreter dependency resolves to its declared constraint rather than
// an installed version.
func (r *Resolver) Scan(m *manifest.Manifest, name string, v version.Version, mode manifest.DepMode) (map[string]string, []string) {
	spec := r.loadSpec(name, v)
	if spec == nil {
		return nil, nil
	}

	deps := make(map[string]string)
	var missing []string
	for _, dep := range spec.Depends() {
		if dep.Name == rockspec.InterpreterPackage {
			if !dep.Unconstrained {
				deps[dep.Name] = dep.Constraint.String()
			}
			continue
		}

		best, ok := r.bestInstalled(m, dep, mode)
		if !ok {
			missing = append(missing, dep.Name)
			continue
		}
		deps[dep.Name] = best.String()
	}

	return deps, missing
}

// loadSpec finds the rockspec stored alongside the installed package in
// any configured tree.
func (r *Resolver) loadSpec(name string, v version.Version) *rockspec.Rockspec {
	for _, tree := range r.trees {
		spec, err := r.specs.Load(tree.RockspecPath(name, v))
		if err == nil {
			return spec
		}
	}
	return nil
}

// bestInstalled returns the highest installed version of the dependency
// that satisfies its constraint, looking at the scanned manifest and, per
// mode, at the manifests of other trees.
func (r *Resolver) bestInstalled(m *manifest.Manifest, dep rockspec.Dependency, mode manifest.DepMode) (version.Version, bool) {
	var best version.Version
	found := false

	consider := func(candidate *manifest.Manifest) {
		if candidate == nil {
			return
		}
		for verStr, entries := range candidate.Repository[dep.Name] {
			if !hasInstalled(entries) {
				continue
			}
			v, err := version.Parse(verStr)
			if err != nil || !dep.Allows(v) {
				continue
			}
			if !found || best.Less(v) {
				best = v
				found = true
			}
		}
	}

	consider(m)
	for _, tree := range r.treesForMode(mode) {
		consider(r.treeManifest(tree))
	}

	return best, found
}

// treesForMode returns the extra trees a mode brings in beyond the
// scanned manifest itself.
func (r *Resolver) treesForMode(mode manifest.DepMode) []repo.Tree {
	switch mode {
	case manifest.DepModeAll:
		return r.trees
	case manifest.DepModeOrder:
		var out []repo.Tree
		for _, tree := range r.trees {
			if tree.Priority >= r.current {
				out = append(out, tree)
			}
		}
		return out
	}
	return nil
}

// treeManifest lazily loads and memoizes a tree's manifest. Trees
// without a loadable manifest are skipped.
func (r *Resolver) treeManifest(tree repo.Tree) *manifest.Manifest {
	path := tree.ManifestPath()
	if m, ok := r.loaded[path]; ok {
		return m
	}
	if r.loadFail[path] {
		return nil
	}

	m, err := manifest.Load(path)
	if err != nil {
		r.loadFail[path] = true
		return nil
	}
	r.loaded[path] = m
	return m
}

func hasInstalled(entries []*manifest.Entry) bool {
	for _, e := range entries {
		if e.Arch == manifest.ArchInstalled {
			return true
		}
	}
	return false
}
