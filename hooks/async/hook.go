// Package asynchook decouples hook sinks from cache hot paths: events are
// queued and delivered by background workers, and dropped when the queue is
// full rather than blocking a cache operation.
//
//	raw := myHooks{}               // e.g. logs or metrics
//	hooks := asynchook.New(raw, 1, 1000)
//	defer hooks.Close()
//
//	cache, _ := leasecache.New[User](leasecache.Options[User]{
//	    Namespace: "user",
//	    Store:     kv,
//	    Codec:     codec.JSON[User]{},
//	    Hooks:     hooks, // or `raw` directly if it is cheap enough
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/leasecache"
)

type Hooks struct {
	inner leasecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ leasecache.Hooks = (*Hooks)(nil)

func New(inner leasecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Safe to call more than once.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) LockContended(key string, attempt int) {
	h.try(func() { h.inner.LockContended(key, attempt) })
}

func (h *Hooks) LockReleaseFailed(key string, err error) {
	h.try(func() { h.inner.LockReleaseFailed(key, err) })
}

func (h *Hooks) SelfHeal(storageKey string, err error) {
	h.try(func() { h.inner.SelfHeal(storageKey, err) })
}

func (h *Hooks) UnsupportedOp(op string) {
	h.try(func() { h.inner.UnsupportedOp(op) })
}
