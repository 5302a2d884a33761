// Package memory implements store.LeaseKV as an in-process map with lease
// expiry. It exists for tests and local development; nothing about it is
// distributed. The simulated clock can be advanced to exercise expiry
// without sleeping.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/unkn0wn-root/leasecache/store"
)

type entry struct {
	val []byte
	exp time.Time // zero => no expiry
}

type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	offset  time.Duration
}

var _ store.LeaseKV = (*Memory)(nil)

func New() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

// Advance moves the simulated clock forward by d. Entries whose lease falls
// inside the advanced window are observed as expired on next access.
func (m *Memory) Advance(d time.Duration) {
	m.mu.Lock()
	m.offset += d
	m.mu.Unlock()
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{val: value, exp: m.expiry(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) CreateIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.entries[key] = entry{val: value, exp: m.expiry(ttl)}
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) RangeScan(_ context.Context, prefix string) ([]store.KV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.KV
	for k := range m.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if e, ok := m.live(k); ok {
			out = append(out, store.KV{Key: k, Value: e.val})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if _, ok := m.live(k); ok {
			n++
		}
		delete(m.entries, k)
	}
	return n, nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(key)
	return ok, nil
}

func (m *Memory) Close(context.Context) error { return nil }

// live returns the entry for key if its lease has not expired, reaping it
// otherwise. Caller must hold mu.
func (m *Memory) live(key string) (entry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return entry{}, false
	}
	if !e.exp.IsZero() && m.now().After(e.exp) {
		delete(m.entries, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *Memory) now() time.Time { return time.Now().Add(m.offset) }
