// Package rockspec models package specifications and the dependency
// queries the manifest subsystem needs from them. Only the query surface
// is implemented here; rockspecs are stored as JSON documents and loaded
// through an explicit, caller-owned cache.
package rockspec

import (
	"fmt"
	"strings"

	"github.com/rockyard/rockyard/pkg/rockyard/persist"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// InterpreterPackage is the reserved dependency name for the scripting
// interpreter itself. A constraint on it declares which interpreter
// versions a package supports.
const InterpreterPackage = "lua"

// Rockspec is a package specification. Dependencies use the rockspec
// constraint syntax: "<name> <constraint>", e.g. "lpeg >= 1.0.1".
type Rockspec struct {
	Package      string   `json:"package"`
	Version      string   `json:"version"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Dependency is one parsed dependency declaration.
type Dependency struct {
	Name       string
	Constraint version.Constraint
	// Unconstrained is set when the declaration names a package with no
	// version clause ("any version").
	Unconstrained bool
}

// ParseDependency parses a single rockspec dependency declaration.
func ParseDependency(decl string) (Dependency, error) {
	fields := strings.Fields(decl)
	if len(fields) == 0 {
		return Dependency{}, fmt.Errorf("empty dependency declaration")
	}

	dep := Dependency{Name: fields[0]}
	if len(fields) == 1 {
		dep.Unconstrained = true
		return dep, nil
	}

	c, err := version.ParseConstraint(strings.Join(fields[1:], " "))
	if err != nil {
		return Dependency{}, fmt.Errorf("dependency %q: %w", decl, err)
	}
	dep.Constraint = c
	return dep, nil
}

// Allows reports whether the installed version v satisfies the dependency.
func (d Dependency) Allows(v version.Version) bool {
	if d.Unconstrained {
		return true
	}
	return d.Constraint.Check(v)
}

// Depends returns the parsed dependency declarations, skipping any that
// fail to parse. The interpreter dependency is included.
func (r *Rockspec) Depends() []Dependency {
	deps := make([]Dependency, 0, len(r.Dependencies))
	for _, decl := range r.Dependencies {
		dep, err := ParseDependency(decl)
		if err != nil {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}

// SupportsTarget reports whether the specification's interpreter
// constraint admits the target interpreter version. Specifications that
// declare no interpreter dependency, or whose constraint cannot be
// parsed, are treated as compatible.
func (r *Rockspec) SupportsTarget(target version.Version) bool {
	for _, decl := range r.Dependencies {
		dep, err := ParseDependency(decl)
		if err != nil {
			continue
		}
		if dep.Name != InterpreterPackage {
			continue
		}
		return dep.Allows(target)
	}
	return true
}

// Cache memoizes loaded rockspecs by file path so that repeated filter
// passes (one per supported interpreter version) load each file once.
// Not safe for concurrent use.
type Cache struct {
	entries map[string]*Rockspec
}

// NewCache creates an empty rockspec cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Rockspec)}
}

// Load returns the rockspec at path, reading it on first access.
func (c *Cache) Load(path string) (*Rockspec, error) {
	if spec, ok := c.entries[path]; ok {
		return spec, nil
	}

	var spec Rockspec
	if err := persist.Load(path, &spec); err != nil {
		return nil, fmt.Errorf("load rockspec: %w", err)
	}

	c.entries[path] = &spec
	return &spec, nil
}
