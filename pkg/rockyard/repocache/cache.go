package repocache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/rockyard/rockyard/pkg/rockyard/manifest"
)

// memEntries bounds the in-memory front; a process rarely touches more
// than a handful of repositories.
const memEntries = 32

// Cache provides layered manifest caching: an expirable in-memory LRU
// over the persistent Badger store.
type Cache struct {
	store *Store
	mem   *expirable.LRU[string, *manifest.Manifest]
}

// Open opens or creates a cache at the given path. Entries go stale
// after ttl in both layers.
func Open(path string, ttl time.Duration) (*Cache, error) {
	store, err := OpenStore(path, ttl)
	if err != nil {
		return nil, err
	}

	return &Cache{
		store: store,
		mem:   expirable.NewLRU[string, *manifest.Manifest](memEntries, nil, ttl),
	}, nil
}

// Close closes the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Get returns the cached manifest for a repository location and target
// version, if present and fresh.
func (c *Cache) Get(location, target string) (*manifest.Manifest, bool) {
	memKey := string(MakeKey(location, target))
	if m, ok := c.mem.Get(memKey); ok {
		return m, true
	}

	data, err := c.store.Get(location, target)
	if err != nil {
		return nil, false
	}

	m := manifest.New()
	if err := json.Unmarshal(data, m); err != nil {
		// Corrupt cache entry; drop it rather than serve garbage.
		_ = c.store.Delete(location, target)
		return nil, false
	}

	c.mem.Add(memKey, m)
	return m, true
}

// Put stores a manifest in both layers.
func (c *Cache) Put(location, target string, m *manifest.Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := c.store.Put(location, target, data); err != nil {
		return err
	}

	c.mem.Add(string(MakeKey(location, target)), m)
	return nil
}

// Invalidate drops the entry for a location and target from both layers.
func (c *Cache) Invalidate(location, target string) error {
	c.mem.Remove(string(MakeKey(location, target)))
	err := c.store.Delete(location, target)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
