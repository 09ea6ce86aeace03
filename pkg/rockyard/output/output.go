// Package output provides formatters for displaying repository listings
// and manifest summaries in various output formats (pretty, plain, json).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
)

// PackageInfo is one package entry in a report, flattened for display.
type PackageInfo struct {
	// Name is the package name.
	Name string `json:"name"`

	// Version is the package version string, revision included.
	Version string `json:"version"`

	// Arch is the entry architecture ("installed", "rockspec", "src", ...).
	Arch string `json:"arch"`

	// Dependencies are the resolved dependency pins, if any.
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Report contains the complete output data for formatting.
type Report struct {
	// Location is the repository the report describes.
	Location string `json:"location"`

	// Packages lists the entries found, sorted by name then version.
	Packages []PackageInfo `json:"packages"`

	// Stats summarizes the manifest behind the listing.
	Stats manifest.Stats `json:"stats"`

	// Elapsed is how long building the report took.
	Elapsed time.Duration `json:"elapsed"`

	// Cached reports whether the manifest came from the local cache
	// rather than a fresh fetch.
	Cached bool `json:"cached"`

	// Warnings contains any warning messages generated along the way.
	Warnings []string `json:"warnings,omitempty"`
}

// FromManifest flattens a manifest into a report, sorted for display.
func FromManifest(location string, m *manifest.Manifest) *Report {
	r := &Report{Location: location, Stats: m.Stats()}
	for name, versions := range m.Repository {
		for version, entries := range versions {
			for _, e := range entries {
				r.Packages = append(r.Packages, PackageInfo{
					Name:         name,
					Version:      version,
					Arch:         e.Arch,
					Dependencies: e.Dependencies,
				})
			}
		}
	}
	sort.Slice(r.Packages, func(i, j int) bool {
		if r.Packages[i].Name != r.Packages[j].Name {
			return r.Packages[i].Name < r.Packages[j].Name
		}
		if r.Packages[i].Version != r.Packages[j].Version {
			return r.Packages[i].Version < r.Packages[j].Version
		}
		return r.Packages[i].Arch < r.Packages[j].Arch
	})
	return r
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
