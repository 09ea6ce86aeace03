// Package config provides configuration management for rockyard.
package config

// Default configuration values.
const (
	// DefaultLuaVersion is the interpreter version targeted when none is
	// configured.
	DefaultLuaVersion = "5.4"

	// DefaultDepsMode is the dependency mode used for manifest rebuilds.
	DefaultDepsMode = "one"

	// DefaultCacheTTLHours is how long fetched remote manifests stay
	// fresh in the repocache.
	DefaultCacheTTLHours = 24
)

// DefaultSupportedVersions are the interpreter versions remote
// repositories serve filtered manifests for.
var DefaultSupportedVersions = []string{"5.1", "5.2", "5.3", "5.4"}
