// Package metrics defines the Prometheus collectors of the search server and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "searchserver"

// Metrics holds all Prometheus collectors of the search server.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsIndexedTotal prometheus.Counter
	DocumentsRemovedTotal prometheus.Counter
	IndexDocuments        prometheus.Gauge
	IndexWords            prometheus.Gauge
	SearchQueriesTotal    *prometheus.CounterVec
	SearchLatency         *prometheus.HistogramVec
	SearchResultsCount    prometheus.Histogram
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
	NoResultRequests      prometheus.Gauge
	DuplicatesRemoved     prometheus.Counter
	IngestEventsTotal     *prometheus.CounterVec
	AdminRequestsTotal    *prometheus.CounterVec
}

// New creates all collectors and registers them on a fresh registry, so
// several servers (and tests) can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DocumentsIndexedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Total documents added to the index.",
		}),
		DocumentsRemovedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_removed_total",
			Help:      "Total documents removed from the index.",
		}),
		IndexDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Number of documents currently indexed.",
		}),
		IndexWords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_words",
			Help:      "Number of distinct words stored, stop words included.",
		}),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_latency_seconds",
				Help:      "Search query latency in seconds by execution mode.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"mode"},
		),
		SearchResultsCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_count",
			Help:      "Number of results returned per search query.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of result cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of result cache misses.",
		}),
		NoResultRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "request_window_no_result",
			Help:      "Requests without results inside the request-queue window.",
		}),
		DuplicatesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_removed_total",
			Help:      "Total documents removed as duplicates.",
		}),
		IngestEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_events_total",
				Help:      "Total ingest events consumed by operation and status.",
			},
			[]string{"op", "status"},
		),
		AdminRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admin_requests_total",
				Help:      "Requests to the metrics and health endpoints by path and status code.",
			},
			[]string{"path", "code"},
		),
	}

	m.Registry.MustRegister(
		m.DocumentsIndexedTotal,
		m.DocumentsRemovedTotal,
		m.IndexDocuments,
		m.IndexWords,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.NoResultRequests,
		m.DuplicatesRemoved,
		m.IngestEventsTotal,
		m.AdminRequestsTotal,
	)
	return m
}

// Handler returns the scrape handler for the registry of m.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
