// Package store defines the lease-capable key-value abstraction leasecache
// sits on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte previously passed to Put for a key (no prepended metadata,
// no re-encoding, no mutation). Every write carries a TTL; the store owns
// expiry and removes the key on its own once the lease runs out.
//
// CreateIfAbsent is the atomic primitive the cache builds its recompute
// mutex on. It MUST be linearizable at the single-key level: exactly one of
// any set of concurrent calls for an absent key may observe created=true.
package store

import (
	"context"
	"time"
)

// KV is one key-value pair returned by RangeScan.
type KV struct {
	Key   string
	Value []byte
}

// LeaseKV is a minimal lease-backed byte store. Must be safe for concurrent
// use. Non-positive TTLs mean "no expiry" where the backend allows it; the
// cache layer never passes one.
type LeaseKV interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// IO/remote failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key with the given lease TTL, replacing any
	// existing entry and its lease.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// CreateIfAbsent atomically writes value iff key does not currently
	// exist (with a live lease). Returns true iff this call created it.
	CreateIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// RangeScan returns all live entries whose key starts with prefix,
	// ordered ascending by key, from a consistent snapshot where the
	// backend can provide one.
	RangeScan(ctx context.Context, prefix string) ([]KV, error)

	// DeletePrefix removes all keys with the given prefix and returns how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int64, error)

	// Exists reports whether key currently holds a live entry.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
