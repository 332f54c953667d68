// Package cache stores analysis reports and rendered exports.
//
// All backends implement [Cache], a byte-oriented key/value store with
// per-entry TTLs:
//
//   - [FileCache]: sharded JSON files under a directory, for the CLI
//   - [MemoryCache]: an LRU bounded by entry count, for the HTTP server
//   - [RedisCache]: a shared Redis instance, for several server replicas
//   - [NullCache]: stores nothing, for --no-cache
//
// [Tiered] layers a fast cache in front of a slower one. Keys are built by
// a [Keyer] so that every caller hashes inputs the same way.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
