package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the metrics of analysis runs. Each instance owns its registry,
// so several runs in one process never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts runs, labeled by run status (success, partial, failed).
	RunsTotal *prometheus.CounterVec
	// StageDuration observes stage durations in seconds, labeled by stage.
	StageDuration *prometheus.HistogramVec
	// Publications is the number of publications in the store of the last run.
	Publications prometheus.Gauge
	// GraphNodes and GraphEdges describe the last coupling graph.
	GraphNodes prometheus.Gauge
	GraphEdges prometheus.Gauge
	// Orphans is the number of vertices without a qualifying edge.
	Orphans prometheus.Gauge
	// Clusters is the number of multi-member clusters.
	Clusters prometheus.Gauge
	// Outliers counts singletons, labeled by kind (outlier, recent).
	Outliers *prometheus.GaugeVec
	// Modularity is the modularity of the last partition.
	Modularity prometheus.Gauge
	// MetricErrors counts per-cluster metric failures, labeled by metric.
	MetricErrors *prometheus.CounterVec
}

// NewMetrics creates and registers the run metrics under namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of analysis runs by status",
		}, []string{"status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"stage"}),
		Publications: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publications",
			Help:      "Publications in the store",
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Vertices of the coupling graph",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges of the coupling graph",
		}),
		Orphans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_orphans",
			Help:      "Vertices without a qualifying coupling",
		}),
		Clusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clusters",
			Help:      "Multi-member clusters",
		}),
		Outliers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outliers",
			Help:      "Singleton publications by kind",
		}, []string{"kind"}),
		Modularity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "modularity",
			Help:      "Modularity of the partition",
		}),
		MetricErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_metric_errors_total",
			Help:      "Per-cluster metric failures by metric",
		}, []string{"metric"}),
	}
	reg.MustRegister(
		m.RunsTotal, m.StageDuration, m.Publications, m.GraphNodes, m.GraphEdges,
		m.Orphans, m.Clusters, m.Outliers, m.Modularity, m.MetricErrors,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records the duration of a stage started at start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the metrics in the Prometheus text format, for
// collection by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
