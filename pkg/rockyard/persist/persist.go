// Package persist provides atomic load/save of keyed tables as JSON files.
//
// Writers never touch the live path directly: data is serialized to a
// uniquely named temporary file in the target directory and then renamed
// over the destination. Concurrent readers therefore always observe either
// the previous complete file or the new one, never a partial write.
// Concurrent writers race and the last rename wins; there is no locking.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Load when the file does not exist.
var ErrNotFound = errors.New("file not found")

// Save atomically writes v as indented JSON to dir/name.
// The directory is created if missing. On any failure the temporary file
// is removed and the existing destination is left untouched.
func Save(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	// Unique temp name so concurrent writers in the same directory cannot
	// clobber each other's in-progress file.
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", target, err)
	}

	return nil
}

// Load reads the JSON file at path into v.
// A missing file is reported as ErrNotFound so callers can distinguish
// absence from corruption.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// Exists reports whether path refers to an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
