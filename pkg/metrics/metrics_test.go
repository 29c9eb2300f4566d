package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.AnalysisRunsTotal == nil {
		t.Error("AnalysisRunsTotal not initialized")
	}
	if r.AnalysisDuration == nil {
		t.Error("AnalysisDuration not initialized")
	}
	if r.ReportsTotal == nil {
		t.Error("ReportsTotal not initialized")
	}
	if r.CompositeScore == nil {
		t.Error("CompositeScore not initialized")
	}
	if r.PortQueriesTotal == nil {
		t.Error("PortQueriesTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordAnalysis(t *testing.T) {
	r := NewRegistry()

	// Record some runs
	r.RecordAnalysis("resistance_mapper", "success", 10*time.Millisecond, 120)
	r.RecordAnalysis("resistance_mapper", "success", 20*time.Millisecond, 80)
	r.RecordAnalysis("resistance_mapper", "error", 5*time.Millisecond, 0)

	// Verify success counter
	successCounter, err := r.AnalysisRunsTotal.GetMetricWithLabelValues("resistance_mapper", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := successCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Success counter = %v, want 2", metric.Counter.GetValue())
	}

	// Verify error counter
	errorCounter, err := r.AnalysisRunsTotal.GetMetricWithLabelValues("resistance_mapper", "error")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	if err := errorCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Error counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordReport(t *testing.T) {
	r := NewRegistry()

	r.RecordReport("success", 0.585, map[string]float64{
		"trust":    0.6,
		"learning": 0.5,
	})

	var metric dto.Metric
	if err := r.CompositeScore.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 0.585 {
		t.Errorf("Composite gauge = %v, want 0.585", metric.Gauge.GetValue())
	}

	trustGauge, err := r.DimensionScore.GetMetricWithLabelValues("trust")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := trustGauge.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 0.6 {
		t.Errorf("trust gauge = %v, want 0.6", metric.Gauge.GetValue())
	}
}

func TestRecordSectionFailure(t *testing.T) {
	r := NewRegistry()

	r.RecordSectionFailure("frame_competition")
	r.RecordSectionFailure("frame_competition")

	counter, err := r.SectionFailures.GetMetricWithLabelValues("frame_competition")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Section failure counter = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordPortQuery(t *testing.T) {
	r := NewRegistry()

	r.RecordPortQuery("all_stories", "success", 2*time.Millisecond)

	counter, err := r.PortQueriesTotal.GetMetricWithLabelValues("all_stories", "success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Port query counter = %v, want 1", metric.Counter.GetValue())
	}
}
