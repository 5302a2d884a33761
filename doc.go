// Package leasecache implements a typed cache-aside provider over a
// lease-capable distributed KV store (etcd primarily), with stampede
// protection via a cooperative per-key recompute mutex.
//
// Components:
//   - store.LeaseKV: lease-backed byte store (etcd, Redis, in-memory).
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//   - DistributedLock: recompute mutex. Defaults to an ephemeral marker key
//     in the same store; swappable for tests or alternate backends.
//   - StatsRecorder: per-instance hit/miss sink, atomic counters by default,
//     prometheus adapter under stats/prom.
//
// Keys:
//
//	data/<ns>/<key>       - cache entries (always lease-backed, never permanent)
//	lock/<ns>/<key>_Lock  - recompute mutex markers
//
// Read-through pattern:
//
//	v, ok, err := cache.GetOrCompute(ctx, k, 5*time.Minute, func(ctx context.Context) (User, error) {
//	    return loadUserFromDB(ctx, k)
//	})
//
// On miss, exactly one caller per key recomputes while the marker's lease is
// live; everyone else polls and picks up the published value. A crashed
// recomputer blocks others only until the marker lease expires.
package leasecache
