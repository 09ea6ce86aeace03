// Package loader resolves a repository location (local directory or
// remote URL) and a target interpreter version to a usable manifest.
// Resolution is layered: the repocache is consulted first, then local
// disk, then the network, trying version-specific manifest filenames
// before the generic one.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
	"github.com/rockyard/rockyard/pkg/rockyard/repocache"
	"github.com/rockyard/rockyard/pkg/rockyard/version"
)

// ErrorCode is a machine-readable classification of a load failure.
type ErrorCode string

const (
	CodeNotFound      ErrorCode = "not_found"
	CodeFetchFailed   ErrorCode = "fetch_failed"
	CodeExtractFailed ErrorCode = "extract_failed"
	CodeParseFailed   ErrorCode = "parse_failed"
)

// Error is a load failure with a human-readable message and an optional
// machine-readable code.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the error code from a load failure, if it has one.
func CodeOf(err error) (ErrorCode, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Code, true
	}
	return "", false
}

// Options configures a Loader. Zero fields get defaults.
type Options struct {
	// CacheDir is the directory for per-location fetch caches.
	// Defaults to the rockyard XDG cache home.
	CacheDir string
	// Fetcher downloads remote files. Defaults to an HTTP fetcher.
	Fetcher Fetcher
	// Cache is the optional cross-process manifest cache.
	Cache *repocache.Cache
	// Logger defaults to the standard logger.
	Logger *log.Logger
}

// Loader resolves repository locations to manifests.
type Loader struct {
	cacheDir string
	fetcher  Fetcher
	cache    *repocache.Cache
	logger   *log.Logger
}

// New creates a Loader.
func New(opts Options) *Loader {
	if opts.CacheDir == "" {
		opts.CacheDir = filepath.Join(xdg.CacheHome, "rockyard")
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewHTTPFetcher()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Loader{
		cacheDir: opts.CacheDir,
		fetcher:  opts.Fetcher,
		cache:    opts.Cache,
		logger:   opts.Logger,
	}
}

// CandidateFilenames returns the manifest filenames to try for a target
// version, most specific first.
func CandidateFilenames(target version.Version) []string {
	if target.IsZero() {
		return []string{manifest.FileName}
	}
	versioned := manifest.VersionedFileName(target)
	return []string{versioned + ".zip", versioned, manifest.FileName}
}

// IsRemote reports whether a repository location needs network access.
func IsRemote(location string) bool {
	for _, scheme := range []string{"http://", "https://", "ftp://"} {
		if strings.HasPrefix(location, scheme) {
			return true
		}
	}
	return false
}

// Load resolves the manifest for a repository location and target
// interpreter version.
func (l *Loader) Load(location string, target version.Version) (*manifest.Manifest, error) {
	location = strings.TrimSuffix(location, "/")
	targetStr := target.String()

	if l.cache != nil {
		if m, ok := l.cache.Get(location, targetStr); ok {
			l.logger.Debug("manifest cache hit", "location", location, "target", targetStr)
			return m, nil
		}
	}

	path, err := l.resolveFile(location, target)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".zip") {
		path, err = extractInPlace(path)
		if err != nil {
			return nil, err
		}
	}

	m, err := manifest.Load(path)
	if err != nil {
		return nil, &Error{Code: CodeParseFailed, Msg: fmt.Sprintf("failed loading manifest for %s", location), Err: err}
	}

	if l.cache != nil {
		if err := l.cache.Put(location, targetStr, m); err != nil {
			l.logger.Warn("could not cache manifest", "location", location, "error", err)
		}
	}

	return m, nil
}

// resolveFile locates the manifest file on disk, downloading it first
// for remote repositories.
func (l *Loader) resolveFile(location string, target version.Version) (string, error) {
	names := CandidateFilenames(target)

	if !IsRemote(location) {
		dir := strings.TrimPrefix(location, "file://")
		for _, name := range names {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				return path, nil
			}
		}
		return "", &Error{Code: CodeNotFound, Msg: fmt.Sprintf("no manifest found in %s", dir)}
	}

	dest := filepath.Join(l.cacheDir, SanitizeLocation(location))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", &Error{Code: CodeFetchFailed, Msg: "cannot create fetch cache", Err: err}
	}

	var lastErr error
	for _, name := range names {
		path, err := l.fetcher.Fetch(location+"/"+name, dest)
		if err == nil {
			return path, nil
		}
		l.logger.Debug("manifest candidate failed", "url", location+"/"+name, "error", err)
		lastErr = err
	}

	var le *Error
	if errors.As(lastErr, &le) {
		return "", lastErr
	}
	return "", &Error{Code: CodeFetchFailed, Msg: fmt.Sprintf("failed fetching manifest from %s", location), Err: lastErr}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
