// Package repocache caches loaded repository manifests across processes.
// A Badger store persists fetched manifests keyed by repository location
// and target interpreter version, with a TTL providing the freshness
// policy; an in-memory expirable LRU in front serves repeated loads
// within one process without touching disk.
package repocache

import (
	"bytes"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist or expired.
var ErrNotFound = errors.New("cache entry not found")

// keySeparator separates location from target version in cache keys.
const keySeparator = '\x00'

// MakeKey creates a cache key from a repository location and a target
// interpreter version.
func MakeKey(location, target string) []byte {
	return []byte(location + string(keySeparator) + target)
}

// ParseKey extracts location and target from a cache key.
func ParseKey(key []byte) (location, target string) {
	idx := bytes.IndexByte(key, keySeparator)
	if idx == -1 {
		return string(key), ""
	}
	return string(key[:idx]), string(key[idx+1:])
}

// Store wraps Badger for persistent manifest caching.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenStore opens or creates a store at the given path. Entries expire
// after ttl; a zero ttl keeps them forever.
func OpenStore(path string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves the raw cached bytes for a location and target.
func (s *Store) Get(location, target string) ([]byte, error) {
	key := MakeKey(location, target)
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores raw bytes for a location and target, applying the TTL.
func (s *Store) Put(location, target string, value []byte) error {
	key := MakeKey(location, target)

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, value)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes the entry for a location and target.
func (s *Store) Delete(location, target string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(MakeKey(location, target))
	})
}
