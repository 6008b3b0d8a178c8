package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Domain Prometheus metrics.
var (
	ParcelsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "parcelmap",
			Name:      "parcels_loaded",
			Help:      "Number of parcels in the in-memory index",
		},
	)

	DatasetLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "parcelmap",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent loading all dataset sources at startup",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcelmap",
			Name:      "search_total",
			Help:      "Parcel searches by outcome",
		},
		[]string{"mode", "result"}, // result: "found" / "not_found"
	)

	SplitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcelmap",
			Name:      "split_total",
			Help:      "Parcel split requests by outcome",
		},
		[]string{"result"}, // "ok" / "invalid"
	)

	LabelCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcelmap",
			Name:      "label_cache_total",
			Help:      "Label cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TileRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parcelmap",
			Name:      "tile_requests_total",
			Help:      "MBTiles tile reads by cache outcome",
		},
		[]string{"result"}, // "hit" / "miss" / "not_found" / "error"
	)
)

var registerDomainOnce sync.Once

// RegisterDomainMetrics registers Prometheus domain metrics. Safe to call more than once.
func RegisterDomainMetrics() {
	registerDomainOnce.Do(func() {
		prometheus.MustRegister(
			ParcelsLoaded,
			DatasetLoadDuration,
			SearchTotal,
			SplitTotal,
			LabelCacheTotal,
			TileRequestsTotal,
		)
	})
}
