package metrics

import (
	"time"
)

// RecordAnalysis records one analyzer run with its duration and the number
// of stories it examined
func (r *Registry) RecordAnalysis(analyzer, status string, duration time.Duration, stories int) {
	r.AnalysisRunsTotal.WithLabelValues(analyzer, status).Inc()
	r.AnalysisDuration.WithLabelValues(analyzer).Observe(duration.Seconds())
	r.StoriesAnalyzed.WithLabelValues(analyzer).Observe(float64(stories))
}

// RecordReport records a completed report and publishes its scores
func (r *Registry) RecordReport(status string, composite float64, dimensions map[string]float64) {
	r.ReportsTotal.WithLabelValues(status).Inc()
	r.CompositeScore.Set(composite)
	for name, score := range dimensions {
		r.DimensionScore.WithLabelValues(name).Set(score)
	}
}

// RecordSectionFailure records a report section excluded from the composite
func (r *Registry) RecordSectionFailure(analyzer string) {
	r.SectionFailures.WithLabelValues(analyzer).Inc()
}

// RecordPortQuery records a graph port query execution
func (r *Registry) RecordPortQuery(query, status string, duration time.Duration) {
	r.PortQueriesTotal.WithLabelValues(query, status).Inc()
	r.PortQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}
