package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storylens_analysis_runs_total",
			Help: "Total number of analyzer runs",
		},
		[]string{"analyzer", "status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storylens_analysis_duration_seconds",
			Help:    "Analyzer run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"analyzer"},
	)

	r.StoriesAnalyzed = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storylens_stories_analyzed",
			Help:    "Number of stories examined per analyzer run",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
		[]string{"analyzer"},
	)
}

func (r *Registry) initReportMetrics() {
	r.ReportsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storylens_reports_total",
			Help: "Total number of readiness reports produced",
		},
		[]string{"status"},
	)

	r.CompositeScore = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "storylens_composite_readiness_score",
			Help: "Most recent composite readiness score (0-1)",
		},
	)

	r.DimensionScore = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storylens_dimension_score",
			Help: "Most recent per-dimension readiness score (0-1)",
		},
		[]string{"dimension"},
	)

	r.SectionFailures = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storylens_report_section_failures_total",
			Help: "Report sections that failed and were excluded from the composite",
		},
		[]string{"analyzer"},
	)
}

func (r *Registry) initPortMetrics() {
	r.PortQueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storylens_port_queries_total",
			Help: "Total number of graph port queries executed",
		},
		[]string{"query", "status"},
	)

	r.PortQueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storylens_port_query_duration_seconds",
			Help:    "Graph port query duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"query"},
	)
}
