// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics declares the Prometheus instruments the engine loop
// and the IPFS pre-fetch sink update as they run, grounded on the
// teacher's pervasive use of github.com/prometheus/client_golang
// throughout snow/consensus/snowman and snow/networking/router for
// per-component counters/gauges registered against a shared registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every instrument Atlas exposes. A single instance is
// constructed at startup and threaded through the engine and ipfscache,
// mirroring the teacher's convention of a small metrics struct passed by
// reference rather than package-level globals.
type Metrics struct {
	EventsApplied     *prometheus.CounterVec
	BlocksProcessed   prometheus.Counter
	Emissions         prometheus.Counter
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	PendingFetchGauge prometheus.Gauge
	FetchErrors       prometheus.Counter
}

// New registers every instrument against reg and returns the bundle.
// Registering twice against the same registry panics, matching
// client_golang's own documented behavior; callers construct exactly one
// Metrics per process.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "events_applied_total",
			Help:      "Topology events applied to GraphState, by event kind.",
		}, []string{"kind"}),
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "blocks_processed_total",
			Help:      "Blocks consumed from the Source.",
		}),
		Emissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "emissions_total",
			Help:      "CanonicalGraphUpdated messages emitted to the Sink.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "reach_cache_hits_total",
			Help:      "TransitiveProcessor cache hits, by variant.",
		}, []string{"variant"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "reach_cache_misses_total",
			Help:      "TransitiveProcessor cache misses, by variant.",
		}, []string{"variant"}),
		PendingFetchGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atlas",
			Name:      "ipfs_pending_fetches",
			Help:      "In-flight IPFS fetches not yet completed.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atlas",
			Name:      "ipfs_fetch_errors_total",
			Help:      "IPFS fetches that completed with errored=true.",
		}),
	}

	reg.MustRegister(
		m.EventsApplied,
		m.BlocksProcessed,
		m.Emissions,
		m.CacheHits,
		m.CacheMisses,
		m.PendingFetchGauge,
		m.FetchErrors,
	)

	return m
}
