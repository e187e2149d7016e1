// # internal/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "importlens_analysis_seconds",
		Help:    "Time spent analyzing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ImportSitesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importlens_import_sites_total",
		Help: "Total number of discovered import sites by kind.",
	}, []string{"kind"})

	MappingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importlens_mappings_total",
		Help: "Total number of produced pattern mappings by kind.",
	}, []string{"kind"})

	RewritePasses = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "importlens_rewrite_passes",
		Help:    "Rewrite passes needed for a request value to settle.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 50},
	})

	UnsettledValuesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importlens_unsettled_values_total",
		Help: "Total number of request values that exhausted the pass budget.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "importlens_graph_nodes_total",
		Help: "Total number of nodes in the module graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "importlens_graph_edges_total",
		Help: "Total number of edges in the module graph.",
	})

	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importlens_issues_total",
		Help: "Total number of emitted diagnostics by severity.",
	}, []string{"severity"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importlens_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
