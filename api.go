package leasecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/leasecache/codec"
	st "github.com/unkn0wn-root/leasecache/store"
)

// RecomputeFunc produces a fresh value for a key on cache miss. While the
// recompute mutex is held it runs in at most one caller per key.
type RecomputeFunc[V any] func(ctx context.Context) (V, error)

// Cache is the high-level, store-agnostic cache-aside API.
// V is the caller's value type; serialization is handled by a pluggable
// Codec[V]. All operations round-trip to the shared store - nothing is held
// in-process, so instances in different processes observe the same data.
type Cache[V any] interface {
	Enabled() bool
	Close(ctx context.Context) error

	// Single
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn RecomputeFunc[V]) (v V, ok bool, err error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	TrySet(ctx context.Context, key string, value V, ttl time.Duration) (bool, error)
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Bulk (sequential per-key; no cross-key atomicity)
	GetAll(ctx context.Context, keys []string) (map[string]V, error)
	SetAll(ctx context.Context, items map[string]V, ttl time.Duration) error
	RemoveAll(ctx context.Context, keys []string) error

	// Prefix (one range-scan per call)
	GetAllByPrefix(ctx context.Context, prefix string) (map[string]V, error)
	GetAllKeysByPrefix(ctx context.Context, prefix string) ([]string, error)
	RemoveByPrefix(ctx context.Context, prefix string) (int64, error)
	Count(ctx context.Context, prefix string) (int64, error)

	// RemoveByPattern is not supported by any backend and always returns
	// ErrUnsupported. Flush is a documented no-op: the store offers no
	// provider-scoped clear primitive.
	RemoveByPattern(ctx context.Context, pattern string) error
	Flush(ctx context.Context) error

	// Stats snapshots the configured StatsRecorder. Only recorders that
	// expose Snapshot() Stats (like the default Counters) can be read
	// back; with an external sink such as stats/prom, Stats returns a
	// zero Stats and the sink is the source of truth.
	Stats() Stats
}

// Options tune the provider. Only Namespace, Store and Codec are required;
// others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "user", "session"
	Store     st.LeaseKV
	Codec     c.Codec[V]

	Logger      Logger          // if nil, NopLogger is used
	Hooks       Hooks           // if nil, NopHooks is used
	Stats       StatsRecorder   // if nil, a per-instance Counters is used
	Lock        DistributedLock // if nil, a lock over Store is used
	LockTTL     time.Duration   // recompute mutex lease; 0 => 3s
	LockBackoff time.Duration   // sleep between lock-acquire retries; 0 => 50ms
	JitterMax   time.Duration   // upper bound of random TTL jitter; 0 => none
	CacheNils   bool            // cache nil recompute results / allow nil Set values
	Disabled    bool            // default false (enabled)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
