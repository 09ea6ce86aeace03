package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rockyard/rockyard/pkg/rockyard/loader"
	"github.com/rockyard/rockyard/pkg/rockyard/logging"
	"github.com/rockyard/rockyard/pkg/rockyard/output"
	"github.com/rockyard/rockyard/pkg/rockyard/repocache"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

var statusCmd = &cobra.Command{
	Use:   "status <location>",
	Short: "Show the contents of a repository",
	Long: `Load a repository's manifest and list the packages it serves.

The location may be a local directory or a remote URL. Remote manifests
are cached; use --no-cache to force a fresh fetch.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("lua-version", "", "target interpreter version (default from config)")
	statusCmd.Flags().Bool("no-cache", false, "bypass the manifest cache")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.Get("status")
	location := strings.TrimSuffix(args[0], "/")

	targetStr, _ := cmd.Flags().GetString("lua-version")
	if targetStr == "" {
		targetStr = cfg.LuaVersion
	}
	target, err := version.Parse(targetStr)
	if err != nil {
		return fmt.Errorf("invalid interpreter version %q: %w", targetStr, err)
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	var cache *repocache.Cache
	if !noCache {
		ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
		cache, err = repocache.Open(filepath.Join(cfg.CacheDir, "manifests"), ttl)
		if err != nil {
			logger.Warn("manifest cache unavailable", "error", err)
		} else {
			defer cache.Close()
		}
	}

	cached := false
	if cache != nil {
		_, cached = cache.Get(location, target.String())
	}

	start := time.Now()
	ldr := loader.New(loader.Options{
		CacheDir: cfg.CacheDir,
		Cache:    cache,
		Logger:   logger,
	})
	m, err := ldr.Load(location, target)
	if err != nil {
		if code, ok := loader.CodeOf(err); ok {
			return fmt.Errorf("%s (%s)", err, code)
		}
		return err
	}

	report := output.FromManifest(location, m)
	report.Elapsed = time.Since(start)
	report.Cached = cached

	format, _ := cmd.Flags().GetString("output")
	formatter, err := output.Get(format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return nil
}
