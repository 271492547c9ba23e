// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "deals"

var (
	DealViewsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "views_built_total",
		Help:      "Deal views built, by result.",
	}, []string{"result"})

	DealViewBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "view_build_seconds",
		Help:      "Time spent assembling a deal view.",
		Buckets:   prometheus.DefBuckets,
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Deal view cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Deal view cache misses.",
	})

	ObservationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_processed_total",
		Help:      "Price observations consumed, by status.",
	}, []string{"status"})

	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_emitted_total",
		Help:      "Deal events produced, by type.",
	}, []string{"type"})
)
