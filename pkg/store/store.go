package store

import (
	"context"

	"github.com/kestrelcache/metacache/pkg/types"
)

// Store defines the persistence contract the cache engine depends on. The
// SQLite-backed implementation lives in sqlite.go; tests may supply a
// fake satisfying the same interface.
type Store interface {
	// Lookup returns every stored row of the given kind whose id or alias
	// is in keys, in no particular order. Missing keys are simply absent
	// from the result — Lookup never errors on a miss.
	Lookup(ctx context.Context, kind types.Kind, keys []string) ([]*types.CachedEntry, error)

	// Upsert writes every entry, replacing any existing row with the same
	// (id, data_type).
	Upsert(ctx context.Context, entries []*types.CachedEntry) error

	// Prune deletes every row (of any kind) whose expiry is at or before
	// olderThan, returning the number of rows removed. Unlike the
	// expiry check the cache engine applies on read, this permanently
	// removes tombstones and stale rows that are never going to be
	// revisited.
	Prune(ctx context.Context, olderThan int64) (int64, error)

	// Stats returns the row count for every kind currently present.
	Stats(ctx context.Context) (map[types.Kind]int64, error)

	// Close releases the underlying database handle.
	Close() error
}
