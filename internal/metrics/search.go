package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and indexing Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vfsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vfsearch",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration including permission filtering",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SearchHitsHidden = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vfsearch",
			Name:      "search_hits_hidden_total",
			Help:      "Hits hidden from results by permission filtering",
		},
	)

	IndexDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vfsearch",
			Name:      "index_documents_total",
			Help:      "Documents processed by the write path",
		},
		[]string{"status"}, // "indexed" / "skipped" / "deleted"
	)

	IndexCommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vfsearch",
			Name:      "index_commit_duration_seconds",
			Help:      "Index commit duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchHitsHidden)
	prometheus.MustRegister(IndexDocumentsTotal)
	prometheus.MustRegister(IndexCommitDuration)
	searchMetricsRegistered = true
}
