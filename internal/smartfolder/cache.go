// Package smartfolder evaluates SmartCriteria predicates against the
// catalog and caches the last matching URL set per predicate hash in a
// bbolt-backed store, grounded on the teacher pack's own bbolt log
// database (go.etcd.io/bbolt, via SentryShot-sentryshot/pkg/log).
package smartfolder

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var resultsBucket = []byte("smart_folder_results")

// Cache persists, per criteria canonical form, the last set of matching
// video URLs, so a re-evaluation can diff added/removed without rescanning
// the whole catalog twice.
type Cache struct {
	db *bolt.DB
}

type cachedResult struct {
	URLs      []string  `json:"urls"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OpenCache opens (creating if absent) a bbolt database at dbPath.
func OpenCache(dbPath string) (*Cache, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("smartfolder: open cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resultsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("smartfolder: create bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying bbolt database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the last cached URL set for hash, or (nil, false) if absent.
func (c *Cache) Get(hash string) ([]string, bool) {
	var result cachedResult
	var found bool

	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket)
		data := b.Get([]byte(hash))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return nil
		}
		found = true
		return nil
	})

	if !found {
		return nil, false
	}
	return result.URLs, true
}

// Put stores urls as the current matching set for hash.
func (c *Cache) Put(hash string, urls []string) error {
	data, err := json.Marshal(cachedResult{URLs: urls, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("smartfolder: marshal cache entry: %w", err)
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket)
		return b.Put([]byte(hash), data)
	})
}
