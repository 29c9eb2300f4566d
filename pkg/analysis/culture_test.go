package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/narrative"
)

func TestAssessInnovationCultureEmpty(t *testing.T) {
	d := NewCulturalSignalDetector(graphport.NewMemory(), nil, nil)
	report, err := d.AssessInnovationCulture(context.Background())
	if err != nil {
		t.Fatalf("AssessInnovationCulture: %v", err)
	}
	if report.OverallScore != 0.5 || report.RiskAversion != 0.5 {
		t.Errorf("scores = %v / %v, want 0.5 / 0.5", report.OverallScore, report.RiskAversion)
	}
	if !strings.Contains(report.Interpretation, "insufficient data") {
		t.Errorf("Interpretation = %q", report.Interpretation)
	}
	if len(report.Dimensions) != 0 {
		t.Errorf("Dimensions = %v, want none", report.Dimensions)
	}
}

func TestAssessInnovationCultureFixture(t *testing.T) {
	m := graphport.NewMemory()
	m.AddStory(graphport.Record{
		"id":      "c1",
		"summary": "we ran a pilot on the oldest queue",
		"groups":  []string{"ops"},
	})
	m.AddStory(graphport.Record{
		"id":      "c2",
		"summary": "the project was blocked again",
		"groups":  []string{"ops"},
	})
	m.AddStory(graphport.Record{
		"id":      "c3",
		"summary": "nothing notable this month",
		"groups":  []string{"ops"},
	})

	d := NewCulturalSignalDetector(m, nil, nil)
	report, err := d.AssessInnovationCulture(context.Background())
	if err != nil {
		t.Fatalf("AssessInnovationCulture: %v", err)
	}

	if len(report.Dimensions) != 5 {
		t.Fatalf("got %d dimensions, want 5", len(report.Dimensions))
	}
	byName := make(map[string]CultureDimension, len(report.Dimensions))
	for _, dim := range report.Dimensions {
		byName[dim.Name] = dim
	}

	// One experiment marker against one blocking marker.
	exp := byName[DimExperimentation]
	if exp.Positive != 1 || exp.Negative != 1 || exp.Score != 0.5 {
		t.Errorf("experimentation = %+v", exp)
	}

	// No failure stories at all, so failure tolerance sits at the prior.
	if ft := byName[DimFailureTolerance]; ft.Score != 0.5 || ft.Positive+ft.Negative != 0 {
		t.Errorf("failure_tolerance = %+v", ft)
	}

	// A single group owns every story.
	if div := byName[DimNarrativeDiversity]; div.Score != 0 {
		t.Errorf("narrative_diversity = %+v, want score 0", div)
	}

	// Four dimensions at the 0.5 prior, diversity at 0.
	if math.Abs(report.OverallScore-0.4) > 1e-9 {
		t.Errorf("OverallScore = %v, want 0.4", report.OverallScore)
	}
	if math.Abs(report.RiskAversion-0.6) > 1e-9 {
		t.Errorf("RiskAversion = %v, want 0.6", report.RiskAversion)
	}
	if len(report.Signals) != 5 {
		t.Errorf("Signals = %v, want one per dimension", report.Signals)
	}

	foundDiversityRec := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "quieter groups") {
			foundDiversityRec = true
		}
	}
	if !foundDiversityRec {
		t.Errorf("Recommendations = %v, want a narrative diversity recommendation", report.Recommendations)
	}
}

func TestScoreFailureToleranceFraming(t *testing.T) {
	m := graphport.NewMemory()
	m.AddStory(graphport.Record{
		"id":        "f1",
		"summary":   "the rollout failed but the lesson was worth it",
		"groups":    []string{"eng"},
		"sentiment": -0.5,
	})
	m.AddStory(graphport.Record{
		"id":                 "f2",
		"summary":            "a mistake we should never repeat",
		"groups":             []string{"eng"},
		"narrative_function": "warning",
	})
	// Positive story with learning language is not a failure story and
	// must not count toward failure tolerance.
	m.AddStory(graphport.Record{
		"id":        "f3",
		"summary":   "a lesson in how well this can go",
		"groups":    []string{"eng"},
		"sentiment": 0.6,
	})

	d := NewCulturalSignalDetector(m, nil, nil)
	report, err := d.AssessInnovationCulture(context.Background())
	if err != nil {
		t.Fatalf("AssessInnovationCulture: %v", err)
	}
	for _, dim := range report.Dimensions {
		if dim.Name != DimFailureTolerance {
			continue
		}
		if dim.Positive != 1 || dim.Negative != 1 {
			t.Errorf("failure_tolerance counts = %d vs %d, want 1 vs 1", dim.Positive, dim.Negative)
		}
	}
}

func TestScoreNarrativeDiversity(t *testing.T) {
	stories := []*narrative.Story{
		{ID: "a", Groups: []string{"eng"}},
		{ID: "b", Groups: []string{"eng"}},
		{ID: "c", Groups: []string{"eng"}},
		{ID: "d", Groups: []string{"ops"}},
	}
	dim := scoreNarrativeDiversity(stories)
	if math.Abs(dim.Score-0.25) > 1e-9 {
		t.Errorf("diversity = %v, want 0.25", dim.Score)
	}
	if dim.Positive != 1 || dim.Negative != 3 {
		t.Errorf("counts = %d outside, %d modal", dim.Positive, dim.Negative)
	}
}
