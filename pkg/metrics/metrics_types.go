package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the analysis engine
type Registry struct {
	// Analyzer Metrics
	AnalysisRunsTotal *prometheus.CounterVec
	AnalysisDuration  *prometheus.HistogramVec
	StoriesAnalyzed   *prometheus.HistogramVec

	// Report Metrics
	ReportsTotal    *prometheus.CounterVec
	CompositeScore  prometheus.Gauge
	DimensionScore  *prometheus.GaugeVec
	SectionFailures *prometheus.CounterVec

	// Data Port Metrics
	PortQueriesTotal  *prometheus.CounterVec
	PortQueryDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initAnalysisMetrics()
	r.initReportMetrics()
	r.initPortMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
