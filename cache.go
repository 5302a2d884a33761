package leasecache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"
	"sort"
	"time"

	c "github.com/unkn0wn-root/leasecache/codec"
	"github.com/unkn0wn-root/leasecache/internal/util"
	st "github.com/unkn0wn-root/leasecache/store"
)

const (
	defaultLockTTL = 3 * time.Second
	defaultBackoff = 50 * time.Millisecond
)

type cache[V any] struct {
	ns        string
	kv        st.LeaseKV
	codec     c.Codec[V]
	lock      DistributedLock
	log       Logger
	hooks     Hooks
	stats     StatsRecorder
	enabled   bool
	lockTTL   time.Duration
	backoff   time.Duration
	jitterMax time.Duration
	cacheNils bool
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("leasecache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("leasecache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("leasecache: namespace is required")
	}

	cc := &cache[V]{
		ns:        opts.Namespace,
		kv:        opts.Store,
		codec:     opts.Codec,
		enabled:   !opts.Disabled,
		jitterMax: opts.JitterMax,
		cacheNils: opts.CacheNils,
	}

	// defaults
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.lockTTL = coalesce[time.Duration](opts.LockTTL, defaultLockTTL)
	cc.backoff = coalesce[time.Duration](opts.LockBackoff, defaultBackoff)

	if opts.Stats != nil {
		cc.stats = opts.Stats
	} else {
		cc.stats = NewCounters()
	}
	if opts.Lock != nil {
		cc.lock = opts.Lock
	} else {
		cc.lock = NewKVLock(opts.Store)
	}

	return cc, nil
}

func (cc *cache[V]) Enabled() bool { return cc.enabled }

func (cc *cache[V]) Close(ctx context.Context) error {
	if cc.kv != nil {
		return cc.kv.Close(ctx)
	}
	return nil
}

func (cc *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if key == "" {
		return zero, false, ErrEmptyKey
	}
	if !cc.enabled {
		return zero, false, nil
	}
	return cc.read(ctx, key)
}

// read is the stats-recording read path shared by Get and GetOrCompute.
func (cc *cache[V]) read(ctx context.Context, key string) (V, bool, error) {
	var zero V
	k := util.DataKey(cc.ns, key)
	raw, ok, err := cc.kv.Get(ctx, k)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		cc.stats.Miss()
		cc.log.Debug("get miss", Fields{"key": key})
		return zero, false, nil
	}
	v, err := cc.codec.Decode(raw)
	if err != nil {
		// self-heal corrupt entry; the read counts as a miss
		_ = cc.kv.Delete(ctx, k)
		cc.hooks.SelfHeal(k, err)
		cc.stats.Miss()
		cc.log.Warn("get discarded corrupt value", Fields{"key": key, "err": err})
		return zero, false, nil
	}
	cc.stats.Hit()
	cc.log.Debug("get hit", Fields{"key": key})
	return v, true, nil
}

// GetOrCompute is the stampede-protected read-through path. On miss it
// races for the per-key recompute mutex; the winner recomputes and
// publishes, losers back off and re-read. Retries are unbounded - ctx is
// the caller's bound.
func (cc *cache[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, fn RecomputeFunc[V]) (V, bool, error) {
	var zero V
	if key == "" {
		return zero, false, ErrEmptyKey
	}
	if ttl <= 0 {
		return zero, false, ErrNonPositiveTTL
	}
	if fn == nil {
		return zero, false, ErrNilRecompute
	}
	if !cc.enabled {
		// transparent pass-through: compute, never cache
		v, err := fn(ctx)
		if err != nil {
			return zero, false, &RecomputeError{Key: key, Err: err}
		}
		return v, true, nil
	}

	lockID := util.LockKey(cc.ns, key)
	for attempt := 1; ; attempt++ {
		v, ok, err := cc.read(ctx, key)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return v, true, nil
		}

		acquired, err := cc.lock.TryAcquire(ctx, lockID, cc.lockTTL)
		if err != nil {
			return zero, false, err
		}
		if !acquired {
			// someone else is recomputing; poll until they publish or
			// their marker lease expires
			cc.hooks.LockContended(key, attempt)
			cc.log.Debug("recompute contended", Fields{"key": key, "attempt": attempt})
			if err := sleep(ctx, cc.backoff); err != nil {
				return zero, false, err
			}
			continue
		}
		return cc.computeAndPublish(ctx, key, lockID, ttl, fn)
	}
}

// computeAndPublish runs with the recompute mutex held. The deferred
// release runs on every exit path - success, skipped nil, error, panic -
// so a failed recompute never locks the key out.
func (cc *cache[V]) computeAndPublish(ctx context.Context, key, lockID string, ttl time.Duration, fn RecomputeFunc[V]) (V, bool, error) {
	var zero V
	defer func() {
		// release must run even when ctx was cancelled mid-recompute;
		// otherwise the key stays locked out until the marker lease expires
		if err := cc.lock.Release(context.WithoutCancel(ctx), lockID); err != nil {
			cc.hooks.LockReleaseFailed(key, err)
			cc.log.Warn("lock release failed", Fields{"key": key, "err": err})
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		return zero, false, &RecomputeError{Key: key, Err: err}
	}
	if !cc.cacheNils && isNil(v) {
		cc.log.Debug("recompute returned nil, not cached", Fields{"key": key})
		return zero, false, nil
	}
	if err := cc.write(ctx, key, v, ttl); err != nil {
		return zero, false, err
	}
	cc.log.Debug("recomputed and published", Fields{"key": key, "ttl": ttl})
	return v, true, nil
}

func (cc *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return ErrNonPositiveTTL
	}
	if !cc.cacheNils && isNil(value) {
		return ErrNilValue
	}
	if !cc.enabled {
		return nil
	}
	return cc.write(ctx, key, value, ttl)
}

// TrySet writes only if the key does not already exist. Reports whether the
// write happened.
func (cc *cache[V]) TrySet(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if ttl <= 0 {
		return false, ErrNonPositiveTTL
	}
	if !cc.cacheNils && isNil(value) {
		return false, ErrNilValue
	}
	if !cc.enabled {
		return false, nil
	}
	raw, err := cc.codec.Encode(value)
	if err != nil {
		return false, err
	}
	created, err := cc.kv.CreateIfAbsent(ctx, util.DataKey(cc.ns, key), raw, cc.leaseTTL(ttl))
	if err != nil {
		return false, err
	}
	cc.log.Debug("tryset", Fields{"key": key, "created": created})
	return created, nil
}

func (cc *cache[V]) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !cc.enabled {
		return nil
	}
	if err := cc.kv.Delete(ctx, util.DataKey(cc.ns, key)); err != nil {
		return err
	}
	cc.log.Debug("removed", Fields{"key": key})
	return nil
}

func (cc *cache[V]) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if !cc.enabled {
		return false, nil
	}
	return cc.kv.Exists(ctx, util.DataKey(cc.ns, key))
}

// GetAll reads keys one by one. Misses are omitted from the result; the
// first store error fails the call.
func (cc *cache[V]) GetAll(ctx context.Context, keys []string) (map[string]V, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		v, ok, err := cc.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// SetAll writes items one by one in sorted key order. There is no cross-key
// atomicity: on error, already-written keys stay written.
func (cc *cache[V]) SetAll(ctx context.Context, items map[string]V, ttl time.Duration) error {
	if len(items) == 0 {
		return ErrNoKeys
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := cc.Set(ctx, k, items[k], ttl); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll deletes keys one by one. On error, already-deleted keys stay
// deleted.
func (cc *cache[V]) RemoveAll(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	for _, k := range keys {
		if err := cc.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// GetAllByPrefix range-scans once and decodes every value. A single decode
// failure fails the whole call - no partial result.
func (cc *cache[V]) GetAllByPrefix(ctx context.Context, prefix string) (map[string]V, error) {
	if !cc.enabled {
		return map[string]V{}, nil
	}
	kvs, err := cc.kv.RangeScan(ctx, util.DataPrefix(cc.ns, prefix))
	if err != nil {
		return nil, err
	}
	out := make(map[string]V, len(kvs))
	for _, kv := range kvs {
		v, err := cc.codec.Decode(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("leasecache: decode %q: %w", util.UserKey(cc.ns, kv.Key), err)
		}
		out[util.UserKey(cc.ns, kv.Key)] = v
	}
	cc.log.Debug("get by prefix", Fields{"prefix": prefix, "count": len(out)})
	return out, nil
}

func (cc *cache[V]) GetAllKeysByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if !cc.enabled {
		return nil, nil
	}
	kvs, err := cc.kv.RangeScan(ctx, util.DataPrefix(cc.ns, prefix))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		keys = append(keys, util.UserKey(cc.ns, kv.Key))
	}
	return keys, nil
}

func (cc *cache[V]) RemoveByPrefix(ctx context.Context, prefix string) (int64, error) {
	if !cc.enabled {
		return 0, nil
	}
	n, err := cc.kv.DeletePrefix(ctx, util.DataPrefix(cc.ns, prefix))
	if err != nil {
		return 0, err
	}
	cc.log.Info("removed by prefix", Fields{"prefix": prefix, "count": n})
	return n, nil
}

func (cc *cache[V]) Count(ctx context.Context, prefix string) (int64, error) {
	if !cc.enabled {
		return 0, nil
	}
	kvs, err := cc.kv.RangeScan(ctx, util.DataPrefix(cc.ns, prefix))
	if err != nil {
		return 0, err
	}
	return int64(len(kvs)), nil
}

// RemoveByPattern is unsupported: the store exposes prefix ranges only, and
// reporting partial glob matches as success would lie to the caller.
func (cc *cache[V]) RemoveByPattern(_ context.Context, pattern string) error {
	cc.hooks.UnsupportedOp("RemoveByPattern")
	cc.log.Warn("RemoveByPattern is not supported", Fields{"pattern": pattern})
	return ErrUnsupported
}

// Flush is a no-op. Entries expire on their own; use RemoveByPrefix with a
// known prefix to clear a keyspace. The hook fires so operators can spot
// callers expecting more.
func (cc *cache[V]) Flush(context.Context) error {
	cc.hooks.UnsupportedOp("Flush")
	cc.log.Warn("Flush is a no-op", nil)
	return nil
}

func (cc *cache[V]) Stats() Stats {
	if s, ok := cc.stats.(interface{ Snapshot() Stats }); ok {
		return s.Snapshot()
	}
	return Stats{}
}

func (cc *cache[V]) write(ctx context.Context, key string, value V, ttl time.Duration) error {
	raw, err := cc.codec.Encode(value)
	if err != nil {
		return err
	}
	return cc.kv.Put(ctx, util.DataKey(cc.ns, key), raw, cc.leaseTTL(ttl))
}

// leaseTTL adds uniform random jitter (up to jitterMax) to desynchronize
// simultaneous expirations across many keys.
func (cc *cache[V]) leaseTTL(ttl time.Duration) time.Duration {
	if cc.jitterMax <= 0 {
		return ttl
	}
	return ttl + rand.N(cc.jitterMax)
}

// sleep blocks for d, honoring ctx cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isNil reports whether v is a nil pointer, interface, map, slice, func or
// channel. Value kinds are never nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
