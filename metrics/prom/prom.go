// Package prom exports a cache's statistics as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/segcache-go/segcache/cache"
)

// StatsSource is the subset of Cache's observability surface the exporter
// polls on every scrape.
type StatsSource interface {
	Stats() cache.Stats
	Count() int64
	Weight() int64
}

// Adapter exports a cache's hit/miss/eviction/entry/weight gauges (pulled
// from a StatsSource on every scrape) plus a removals_total counter vector
// fed live by Listener. All Prometheus metric types are goroutine-safe, so
// Adapter is safe for concurrent use.
type Adapter struct {
	removals *prometheus.CounterVec
}

// New registers gauge pollers over source and a removals-by-reason counter
// vector with reg (nil uses prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels, source StatsSource) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	a := &Adapter{
		removals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "removals_total",
			Help:        "Cache removals by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}

	hits := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: sub, Name: "hits_total",
		Help: "Cache hits", ConstLabels: constLabels,
	}, func() float64 { return float64(source.Stats().Hits) })

	misses := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: sub, Name: "misses_total",
		Help: "Cache misses", ConstLabels: constLabels,
	}, func() float64 { return float64(source.Stats().Misses) })

	evictions := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: sub, Name: "evictions_total",
		Help: "Cache evictions", ConstLabels: constLabels,
	}, func() float64 { return float64(source.Stats().Evictions) })

	entries := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: sub, Name: "entries",
		Help: "Resident entry count", ConstLabels: constLabels,
	}, func() float64 { return float64(source.Count()) })

	weight := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: sub, Name: "weight",
		Help: "Resident total weight", ConstLabels: constLabels,
	}, func() float64 { return float64(source.Weight()) })

	reg.MustRegister(a.removals, hits, misses, evictions, entries, weight)
	return a
}

// Listener wraps a removal listener (next may be nil) so that every
// removal also increments the exporter's removals-by-reason counter before
// next runs.
func Listener[K comparable, V any](a *Adapter, next cache.RemovalListener[K, V]) cache.RemovalListener[K, V] {
	return func(key K, value V, reason cache.RemovalReason) {
		a.removals.WithLabelValues(reason.String()).Inc()
		if next != nil {
			next(key, value, reason)
		}
	}
}
