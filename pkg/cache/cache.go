// Package cache stores computed plan analyses and rendered artifacts.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTL. Keys are
// produced by a [Keyer] from content hashes, so identical blueprints rendered
// with identical options share entries regardless of where they came from.
//
// Three backends are provided:
//
//   - [NullCache]: stores nothing
//   - [FileCache]: JSON entry files grouped by key kind, for the CLI
//   - [RedisCache]: a shared cache for the HTTP server
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is a
	// miss (hit == false), not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default entry lifetimes.
const (
	TTLPlan     = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// NullCache stores nothing. Every Get is a miss.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)           { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
