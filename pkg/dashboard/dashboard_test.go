package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorrow/storylens/pkg/analysis"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/orchestrator"
)

func TestHealthLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.9, "healthy"},
		{0.7, "healthy"},
		{0.69, "stable"},
		{0.5, "stable"},
		{0.49, "strained"},
		{0.3, "strained"},
		{0.29, "critical"},
		{0, "critical"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HealthLabel(tt.score), "HealthLabel(%v)", tt.score)
	}
}

func sampleReport() *orchestrator.Report {
	return &orchestrator.Report{
		CompositeHealth:  0.55,
		ExecutiveSummary: "Composite organizational health: 0.55.",
		Readiness: &analysis.ReadinessReport{
			OverallReadiness: 0.6,
			Level:            analysis.LevelCautious,
		},
		Sections: map[string]orchestrator.SectionStatus{
			analysis.NameReadinessScorer: {Analyzer: analysis.NameReadinessScorer},
			analysis.NameResistanceMapper: {
				Analyzer: analysis.NameResistanceMapper,
				Failed:   true,
				Err:      "backend unavailable",
			},
		},
		RiskSignals: []orchestrator.RiskSignal{
			{
				Source:      analysis.NameReadinessScorer,
				Severity:    narrative.SeverityCritical,
				Description: "overall adoption readiness is stalled",
				Action:      "pause expansion",
			},
			{
				Source:      analysis.NameFrameCompetition,
				Severity:    narrative.SeverityHigh,
				Description: "groups hold opposing frames",
				Action:      "bridge the frames",
			},
			{
				Source:      analysis.NameCulturalSignal,
				Severity:    narrative.SeverityMedium,
				Description: "risk-averse culture",
				Action:      "run small experiments",
			},
		},
		ActionPlan: []orchestrator.ActionItem{
			{
				Priority:      narrative.SeverityCritical,
				Action:        "pause expansion",
				Owner:         "executive sponsor",
				Timeline:      orchestrator.TimelineImmediate,
				SuccessMetric: "composite readiness rises one level",
			},
			{
				Priority:      narrative.SeverityHigh,
				Action:        "bridge the frames",
				Owner:         "change management lead",
				Timeline:      orchestrator.TimelineShortTerm,
				SuccessMetric: "conflicting group pairs decrease",
			},
			{
				Priority:      narrative.SeverityMedium,
				Action:        "run small experiments",
				Owner:         "org development lead",
				Timeline:      orchestrator.TimelineMediumTerm,
				SuccessMetric: "innovation culture score rises above 0.5",
			},
		},
	}
}

func TestBuildZipsSignalsAndActions(t *testing.T) {
	d := Build(sampleReport())

	assert.Equal(t, "stable", d.HealthLabel)
	assert.Equal(t, 0.55, d.CompositeHealth)
	assert.Equal(t, "cautious", d.ReadinessLevel)

	require.Len(t, d.Items, 3)
	first := d.Items[0]
	assert.Equal(t, "overall adoption readiness is stalled", first.Title)
	assert.Equal(t, narrative.SeverityCritical, first.Severity)
	assert.Equal(t, "executive sponsor", first.Owner)
	assert.Equal(t, orchestrator.TimelineImmediate, first.Timeline)
	assert.Equal(t, "pause expansion", first.Action)
}

func TestBuildQuickWins(t *testing.T) {
	d := Build(sampleReport())

	// The critical immediate item is excluded; the high and medium items
	// qualify as quick wins.
	require.Len(t, d.QuickWins, 2)
	for _, win := range d.QuickWins {
		assert.Less(t, int(win.Severity), int(narrative.SeverityCritical))
		assert.NotEqual(t, orchestrator.TimelineImmediate, win.Timeline)
	}
	assert.Equal(t, "bridge the frames", d.QuickWins[0].Action)
}

func TestBuildQuickWinsCap(t *testing.T) {
	report := sampleReport()
	for i := 0; i < 5; i++ {
		report.RiskSignals = append(report.RiskSignals, orchestrator.RiskSignal{
			Source:      analysis.NameCulturalSignal,
			Severity:    narrative.SeverityLow,
			Description: "minor cultural drag",
		})
		report.ActionPlan = append(report.ActionPlan, orchestrator.ActionItem{
			Priority: narrative.SeverityLow,
			Timeline: orchestrator.TimelineMediumTerm,
		})
	}

	d := Build(report)
	assert.Len(t, d.QuickWins, maxQuickWins)
}

func TestBuildSectionNotes(t *testing.T) {
	d := Build(sampleReport())

	assert.Contains(t, d.SectionNotes[analysis.NameResistanceMapper], "failed: backend unavailable")
	assert.Contains(t, d.SectionNotes[analysis.NameReadinessScorer], "readiness 0.600")
}
