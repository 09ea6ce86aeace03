package rockmanifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// Scan walks an installed package's root directory and produces its rock
// manifest tree. Every regular file is checksummed with SHA-256; any
// failure to read or checksum a file aborts the scan and discards all
// partial results.
func Scan(root string) (Tree, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	var (
		mu    sync.Mutex
		files = make(map[string]string)
		dirs  []string
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		rel := relativeTo(root, path)
		if rel == "" {
			return nil
		}
		// The index itself is not part of the package's payload.
		if rel == FileName {
			return nil
		}

		if d.IsDir() {
			mu.Lock()
			dirs = append(dirs, rel)
			mu.Unlock()
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		digest, err := checksumFile(path)
		if err != nil {
			return fmt.Errorf("checksum %s: %w", path, err)
		}

		mu.Lock()
		files[rel] = digest
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assemble(dirs, files), nil
}

// checksumFile returns the hex SHA-256 digest of the file content.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// relativeTo converts an absolute walked path to a slash-separated path
// relative to root. The root itself maps to "".
func relativeTo(root, path string) string {
	if path == root {
		return ""
	}
	rel := strings.TrimPrefix(path, root+string(filepath.Separator))
	return filepath.ToSlash(rel)
}

// assemble builds the nested tree from flat directory and file listings.
func assemble(dirs []string, files map[string]string) Tree {
	tree := Tree{}

	for _, dir := range dirs {
		ensureDir(tree, strings.Split(dir, "/"))
	}
	for rel, digest := range files {
		segments := strings.Split(rel, "/")
		parent := ensureDir(tree, segments[:len(segments)-1])
		parent[segments[len(segments)-1]] = FileNode(digest)
	}

	return tree
}

// ensureDir descends the tree creating directory nodes as needed and
// returns the innermost level.
func ensureDir(tree Tree, segments []string) Tree {
	cur := tree
	for _, seg := range segments {
		node, ok := cur[seg]
		if !ok || !node.IsDir() {
			node = DirNode(Tree{})
			cur[seg] = node
		}
		cur = node.Children
	}
	return cur
}
