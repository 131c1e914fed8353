// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package worldbank

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// DefaultCacheTTL is how long cached indicator responses stay valid.
// World Bank annual series update on the order of months, so a day is
// conservative.
const DefaultCacheTTL = 24 * time.Hour

// Cache is a Badger-backed store of indicator responses keyed by
// series code and year.
//
// # Thread Safety
//
// Cache is safe for concurrent use.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens (or creates) an on-disk cache at dir.
// A ttl of 0 uses DefaultCacheTTL.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open indicator cache: %w", err)
	}
	return newCache(db, ttl), nil
}

// OpenInMemoryCache opens a cache that lives only for the process.
// Used in tests and when no cache directory is configured.
func OpenInMemoryCache(ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory cache: %w", err)
	}
	return newCache(db, ttl), nil
}

func newCache(db *badger.DB, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{db: db, ttl: ttl}
}

func cacheKey(code string, year int) []byte {
	return []byte(fmt.Sprintf("indicator/%s/%d", code, year))
}

// Get returns the cached values for a series-year, if present and not
// expired.
func (c *Cache) Get(code string, year int) (map[string]float64, bool) {
	var values map[string]float64
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(code, year))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &values)
		})
	})
	if err != nil {
		return nil, false
	}
	return values, true
}

// Put stores the values for a series-year with the cache TTL.
func (c *Cache) Put(code string, year int, values map[string]float64) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(code, year), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
