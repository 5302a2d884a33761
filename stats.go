package leasecache

import "sync/atomic"

// StatsRecorder receives one callback per get-path resolution. Injected per
// instance so multiple caches in one process do not share counters unless
// configured to. Implementations must be safe for concurrent use.
type StatsRecorder interface {
	Hit()
	Miss()
}

// Stats is a point-in-time snapshot of the monotonic hit/miss counters.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Counters is the default StatsRecorder: process-local atomic counters.
type Counters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ StatsRecorder = (*Counters)(nil)

func NewCounters() *Counters { return &Counters{} }

func (c *Counters) Hit()  { c.hits.Add(1) }
func (c *Counters) Miss() { c.misses.Add(1) }

func (c *Counters) Snapshot() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// NopStats discards all events. Useful when an external sink (e.g.
// stats/prom) is the only consumer and snapshots are not needed.
type NopStats struct{}

func (NopStats) Hit()  {}
func (NopStats) Miss() {}
