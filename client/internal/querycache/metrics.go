package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Reads served from a fresh cache entry.",
		},
		[]string{"resource"},
	)

	missesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Reads that had to fetch or join an in-flight fetch.",
		},
		[]string{"resource"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Subsystem: "cache",
			Name:      "fetches_total",
			Help:      "Fetcher invocations, after deduplication.",
		},
		[]string{"resource"},
	)

	fetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Subsystem: "cache",
			Name:      "fetch_errors_total",
			Help:      "Fetcher invocations that returned an error.",
		},
		[]string{"resource"},
	)

	invalidatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Subsystem: "cache",
			Name:      "invalidated_entries_total",
			Help:      "Entries marked stale by an invalidation.",
		},
		[]string{"resource"},
	)

	removedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Subsystem: "cache",
			Name:      "removed_entries_total",
			Help:      "Entries deleted by a removal.",
		},
		[]string{"resource"},
	)
)
