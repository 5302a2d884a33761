// Package prom exports cache hit/miss statistics as Prometheus counters.
// Plug a Recorder into Options.Stats to partition cache events by type on
// your existing registry.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/leasecache"
)

const (
	eventHit  = "cache_hit"
	eventMiss = "cache_miss"
)

type Recorder struct {
	events *prometheus.CounterVec
}

var _ leasecache.StatsRecorder = (*Recorder)(nil)

// NewRecorder registers a cache-events counter on reg. prefix is prepended
// to the metric name (e.g. "myapp_"); namespace becomes a constant label so
// several cache instances can share one registry.
func NewRecorder(reg prometheus.Registerer, prefix, namespace string) *Recorder {
	events := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name:        prefix + "cache_events_total",
			Help:        "Total number of cache retrieval events.",
			ConstLabels: prometheus.Labels{"cache": namespace},
		},
		[]string{"event_type"},
	)
	return &Recorder{events: events}
}

func (r *Recorder) Hit()  { r.events.WithLabelValues(eventHit).Inc() }
func (r *Recorder) Miss() { r.events.WithLabelValues(eventMiss).Inc() }
