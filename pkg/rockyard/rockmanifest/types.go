// Package rockmanifest builds, persists and caches per-package file
// indexes: a nested path tree whose leaves are content checksums. The
// index is written as "rock_manifest" inside a package's install
// directory at install time and treated as immutable afterwards.
package rockmanifest

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FileName is the name of the per-package index file inside an install
// directory.
const FileName = "rock_manifest"

// Tree is a directory level of a rock manifest: entry name to node.
type Tree map[string]Node

// Node is either a file (Digest set) or a directory (Children set).
type Node struct {
	Digest   string
	Children Tree
}

// FileNode returns a leaf node holding a content digest.
func FileNode(digest string) Node { return Node{Digest: digest} }

// DirNode returns a directory node with the given children.
func DirNode(children Tree) Node {
	if children == nil {
		children = Tree{}
	}
	return Node{Children: children}
}

// IsDir reports whether the node is a directory.
func (n Node) IsDir() bool { return n.Children != nil }

// MarshalJSON encodes a file node as its digest string and a directory
// node as a nested object.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsDir() {
		return json.Marshal(n.Children)
	}
	return json.Marshal(n.Digest)
}

// UnmarshalJSON decodes either form.
func (n *Node) UnmarshalJSON(data []byte) error {
	var digest string
	if err := json.Unmarshal(data, &digest); err == nil {
		*n = Node{Digest: digest}
		return nil
	}

	var children Tree
	if err := json.Unmarshal(data, &children); err != nil {
		return fmt.Errorf("rock manifest node is neither digest nor tree: %w", err)
	}
	*n = Node{Children: children}
	return nil
}

// Lookup descends the tree along the given path segments and returns the
// node at the end, if present.
func (t Tree) Lookup(segments ...string) (Node, bool) {
	cur := t
	for i, seg := range segments {
		node, ok := cur[seg]
		if !ok {
			return Node{}, false
		}
		if i == len(segments)-1 {
			return node, true
		}
		if !node.IsDir() {
			return Node{}, false
		}
		cur = node.Children
	}
	return Node{}, false
}

// Walk visits every file node in the tree in sorted path order, calling
// fn with the slash-separated relative path and the digest.
func (t Tree) Walk(fn func(relPath, digest string)) {
	t.walk("", fn)
}

func (t Tree) walk(prefix string, fn func(relPath, digest string)) {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		node := t[name]
		if node.IsDir() {
			node.Children.walk(path, fn)
			continue
		}
		fn(path, node.Digest)
	}
}
