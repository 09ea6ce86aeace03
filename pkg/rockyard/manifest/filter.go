package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/rockyard/rockyard/pkg/rockyard/rockspec"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// FilterByTarget removes rockspec-arch entries whose interpreter
// constraint excludes the target version. Installed and binary entries
// are never removed. Rockspecs are read from repoDir through the
// caller-supplied cache so that one pass per supported target version
// loads each file only once. Versions whose rockspec cannot be loaded
// are kept (fail open) with a diagnostic.
func (m *Manifest) FilterByTarget(repoDir string, target version.Version, cache *rockspec.Cache, logger *log.Logger) {
	for name, versions := range m.Repository {
		for verStr, entries := range versions {
			if !hasArch(entries, ArchRockspec) {
				continue
			}

			path := filepath.Join(repoDir, fmt.Sprintf("%s-%s.rockspec", name, verStr))
			spec, err := cache.Load(path)
			if err != nil {
				logger.Warn("cannot load rockspec, keeping version",
					"package", name, "version", verStr, "error", err)
				continue
			}
			if spec.SupportsTarget(target) {
				continue
			}

			kept := entries[:0]
			for _, entry := range entries {
				if entry.Arch != ArchRockspec {
					kept = append(kept, entry)
				}
			}
			if len(kept) == 0 {
				delete(versions, verStr)
			} else {
				versions[verStr] = kept
			}
		}
		if len(versions) == 0 {
			delete(m.Repository, name)
		}
	}
}

func hasArch(entries []*Entry, arch string) bool {
	for _, e := range entries {
		if e.Arch == arch {
			return true
		}
	}
	return false
}
