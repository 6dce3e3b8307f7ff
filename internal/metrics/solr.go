package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "solrmap"

// Index and cache Prometheus metrics.
var (
	SolrRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "solr_requests_total",
			Help:      "Total number of requests sent to the search index",
		},
		[]string{"op", "status"}, // op: update/select/ping, status: ok/error
	)

	SolrRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "solr_request_duration_seconds",
			Help:      "Search index request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_total",
			Help:      "Documents sent in add and delete requests",
		},
		[]string{"op"}, // "add" / "delete"
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_results",
			Help:      "Number of matching documents per search",
			Buckets:   []float64{0, 1, 10, 100, 1000, 10000, 100000},
		},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "response_cache_total",
			Help:      "Select response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ComponentUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "component_up",
			Help:      "1 when the last health check of a component passed",
		},
		[]string{"component"}, // "search" / "cache"
	)
)

var registerOnce sync.Once

// Register registers every solrmap metric on the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SolrRequestsTotal,
			SolrRequestDuration,
			DocumentsTotal,
			SearchResults,
			ResponseCacheTotal,
			ComponentUp,
			HTTPRequestDuration,
			HTTPRequestsTotal,
			HTTPInFlight,
		)
	})
}
