package leasecache

import (
	"context"
	"time"

	st "github.com/unkn0wn-root/leasecache/store"
)

// DistributedLock is the cooperative mutex GetOrCompute serializes
// recomputation with. It is best-effort, not a fencing lock: the lease on
// the marker bounds how long a crashed holder can block others.
type DistributedLock interface {
	// TryAcquire creates the marker iff absent. Returns true iff this
	// caller now holds it.
	TryAcquire(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// Release deletes the marker. Releasing an expired or absent marker is
	// not an error.
	Release(ctx context.Context, id string) error
}

// kvLock backs DistributedLock with the store's atomic create-if-absent
// primitive: the marker is an ephemeral key whose lease self-expires if the
// holder crashes mid-recompute.
type kvLock struct {
	kv st.LeaseKV
}

var _ DistributedLock = (*kvLock)(nil)

// NewKVLock returns a DistributedLock over any LeaseKV. The default when
// Options.Lock is nil.
func NewKVLock(kv st.LeaseKV) DistributedLock {
	return &kvLock{kv: kv}
}

func (l *kvLock) TryAcquire(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return l.kv.CreateIfAbsent(ctx, id, lockMarker, ttl)
}

func (l *kvLock) Release(ctx context.Context, id string) error {
	return l.kv.Delete(ctx, id)
}

// lockMarker is the marker payload. The value carries no meaning; only the
// key's existence does.
var lockMarker = []byte("1")
