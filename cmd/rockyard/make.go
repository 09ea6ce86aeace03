package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rockyard/rockyard/pkg/rockyard/config"
	"github.com/rockyard/rockyard/pkg/rockyard/logging"
	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/repo"
	"github.com/rockyard/rockyard/pkg/rockyard/resolve"
	"github.com/rockyard/rockyard/pkg/rockyard/rockmanifest"
	"github.com/rockyard/rockyard/pkg/rockyard/rockspec"
	"github.com/rockyard/rockyard/pkg/rockyard/search"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

var makeCmd = &cobra.Command{
	Use:   "make [repo-dir]",
	Short: "Rebuild a repository manifest from disk",
	Long: `Rebuild a manifest by scanning a repository's contents.

Without arguments the default rocks tree is rebuilt: installed packages
are inspected for the modules and commands they provide and their
dependencies are resolved against the configured trees.

With a directory argument the directory is indexed as a flat repository
of rockspec and rock files, and per-interpreter-version manifests are
written alongside the generic one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMake,
}

func init() {
	makeCmd.Flags().String("deps-mode", "", "dependency mode (one, all, order, none)")
	rootCmd.AddCommand(makeCmd)
}

func runMake(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return makeRepoManifest(cfg, args[0])
	}
	return makeTreeManifest(cmd, cfg)
}

// makeTreeManifest rebuilds the default tree's manifest in place.
func makeTreeManifest(cmd *cobra.Command, cfg *config.Config) error {
	logger := logging.Get("make")

	tc, err := cfg.DefaultTree()
	if err != nil {
		return err
	}
	tree := repo.Tree{Root: tc.Root, Priority: tc.Priority}

	modeStr, _ := cmd.Flags().GetString("deps-mode")
	if modeStr == "" {
		modeStr = cfg.DepsMode
	}
	mode, ok := manifest.ParseDepMode(modeStr)
	if !ok {
		return fmt.Errorf("invalid deps mode: %q", modeStr)
	}

	if err := os.MkdirAll(tree.RocksDir(), 0o755); err != nil {
		return fmt.Errorf("preparing rocks tree: %w", err)
	}

	// A tree rebuild reflects the disk, so it starts empty: merging into
	// the previous manifest would keep entries for uninstalled packages.
	m := manifest.New()

	results, err := search.DiskSearch(tree.RocksDir(), search.Query{})
	if err != nil {
		return fmt.Errorf("scanning tree %s: %w", tree.Root, err)
	}

	insp := repo.NewInspector(tree, rockmanifest.NewCache())
	if err := m.Store(results, insp); err != nil {
		return err
	}

	resolver := resolve.New(configuredTrees(cfg), tree.Priority, rockspec.NewCache())
	m.ScanDependencies(resolver, mode, logger)

	if err := m.Save(tree.RocksDir()); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	stats := m.Stats()
	logger.Info("tree manifest rebuilt",
		"tree", tree.Root,
		"packages", stats.Packages,
		"versions", stats.Versions)
	return nil
}

// makeRepoManifest indexes a flat repository directory and writes the
// generic manifest plus one filtered manifest per supported interpreter
// version.
func makeRepoManifest(cfg *config.Config, dir string) error {
	logger := logging.Get("make")

	dir = filepath.Clean(dir)
	m := manifest.New()

	results, err := search.DiskSearch(dir, search.Query{})
	if err != nil {
		return fmt.Errorf("scanning repository %s: %w", dir, err)
	}

	insp := repo.NewInspector(repo.Tree{Root: dir}, rockmanifest.NewCache())
	if err := m.Store(results, insp); err != nil {
		return err
	}

	if err := m.Save(dir); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	specs := rockspec.NewCache()
	for _, vs := range cfg.SupportedVersions {
		target, err := version.Parse(vs)
		if err != nil {
			logger.Warn("skipping unparseable interpreter version", "version", vs)
			continue
		}
		filtered := m.Clone()
		filtered.FilterByTarget(dir, target, specs, logger)
		if err := filtered.SaveAs(dir, manifest.VersionedFileName(target)); err != nil {
			return fmt.Errorf("writing %s: %w", manifest.VersionedFileName(target), err)
		}
	}

	stats := m.Stats()
	logger.Info("repository manifest rebuilt",
		"dir", dir,
		"packages", stats.Packages,
		"targets", len(cfg.SupportedVersions))
	return nil
}
