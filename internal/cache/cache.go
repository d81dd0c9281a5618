// Package cache provides the shared TTL cache used to memoize upstream
// GitHub and Jenkins calls. Implementations may be purely in-memory
// (default), Redis-backed, or tiered. The interface stores raw byte
// slices, leaving encoding to the caller; see GetJSON/SetJSON for the
// typed helpers the API wrappers use.
//
// The cache is a best-effort accelerator: a miss (including a false miss
// caused by expiry racing a read) only costs the caller a redundant
// upstream call, never correctness.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
// It is the only "absent" signal: stored values that happen to be empty
// are returned as-is and are never conflated with a miss.
var ErrNotFound = errors.New("cache: key not found")

// Cache abstracts a key-value cache with per-entry TTL support.
// All operations are safe for concurrent use. Keys are opaque; callers
// follow the "{service}:{operation}:{args}" naming convention.
type Cache interface {
	// Get retrieves the value associated with key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL, replacing any existing
	// entry for the key. A non-positive TTL stores an entry that is
	// already expired, which the next Get treats as absent.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache. It is not an error to delete
	// a key that does not exist.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries unconditionally. Used as an operational
	// flush and in test teardown.
	Clear(ctx context.Context) error

	// Exists reports whether the key exists and has not expired.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifies connectivity to the underlying cache backend.
	Ping(ctx context.Context) error

	// Close releases all resources held by the cache implementation.
	Close() error
}
