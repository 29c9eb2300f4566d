package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/narrative"
)

// framesFixture: engineering reads the change as opportunity, customer
// service as threat, and both groups talk about the rollout itself.
func framesFixture() *graphport.Memory {
	m := graphport.NewMemory()
	eng := []string{"e1", "e2", "e3"}
	for _, id := range eng {
		m.AddStory(graphport.Record{
			"id":                 id,
			"summary":            "a chance to automate the boring parts",
			"groups":             []string{"engineering"},
			"sentiment":          0.5,
			"agency_frame":       "opportunity",
			"concepts_mentioned": []string{"rollout"},
		})
	}
	for _, id := range []string{"c1", "c2"} {
		m.AddStory(graphport.Record{
			"id":                 id,
			"summary":            "this will cost people their positions",
			"groups":             []string{"customer_service"},
			"sentiment":          -0.6,
			"agency_frame":       "threat",
			"concepts_mentioned": []string{"rollout"},
		})
	}
	return m
}

func TestMapCompetingFrames(t *testing.T) {
	a := NewFrameCompetitionAnalyzer(framesFixture(), nil, nil)
	report, err := a.MapCompetingFrames(context.Background())
	if err != nil {
		t.Fatalf("MapCompetingFrames: %v", err)
	}

	if report.FramesInUse[narrative.FrameOpportunity] != 3 {
		t.Errorf("opportunity count = %d, want 3", report.FramesInUse[narrative.FrameOpportunity])
	}
	if report.FramesInUse[narrative.FrameThreat] != 2 {
		t.Errorf("threat count = %d, want 2", report.FramesInUse[narrative.FrameThreat])
	}
	if report.DominantByGroup["engineering"] != narrative.FrameOpportunity {
		t.Errorf("engineering dominant = %v", report.DominantByGroup["engineering"])
	}
	if report.DominantByGroup["customer_service"] != narrative.FrameThreat {
		t.Errorf("customer_service dominant = %v", report.DominantByGroup["customer_service"])
	}

	if len(report.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(report.Conflicts))
	}
	c := report.Conflicts[0]
	if c.GroupA != "customer_service" || c.GroupB != "engineering" {
		t.Errorf("conflict pair = %s vs %s", c.GroupA, c.GroupB)
	}
	// Smaller side has 2 stories of 5 total.
	if math.Abs(c.Severity-0.4) > 1e-9 {
		t.Errorf("conflict severity = %v, want 0.4", c.Severity)
	}

	if len(report.CommonGround) != 1 || report.CommonGround[0] != "rollout" {
		t.Errorf("CommonGround = %v, want [rollout]", report.CommonGround)
	}
	// Every story belongs to a conflicting group.
	if len(report.Evidence) != 5 {
		t.Errorf("Evidence = %v, want all five stories", report.Evidence)
	}
}

func TestMapCompetingFramesEmpty(t *testing.T) {
	a := NewFrameCompetitionAnalyzer(graphport.NewMemory(), nil, nil)
	report, err := a.MapCompetingFrames(context.Background())
	if err != nil {
		t.Fatalf("MapCompetingFrames: %v", err)
	}
	if len(report.Conflicts) != 0 || len(report.FramesInUse) != 0 {
		t.Errorf("empty snapshot produced frames: %+v", report)
	}
}

func TestMapCompetingFramesInfersMissingFrames(t *testing.T) {
	m := graphport.NewMemory()
	// No agency_frame property; the summary keyword rules classify it.
	m.AddStory(graphport.Record{
		"id":      "i1",
		"summary": "a real opportunity for the support team",
		"groups":  []string{"support"},
	})

	a := NewFrameCompetitionAnalyzer(m, nil, nil)
	report, err := a.MapCompetingFrames(context.Background())
	if err != nil {
		t.Fatalf("MapCompetingFrames: %v", err)
	}
	if report.DominantByGroup["support"] != narrative.FrameOpportunity {
		t.Errorf("inferred dominant = %v, want opportunity", report.DominantByGroup["support"])
	}
}

func TestDesignUnifiedNarrative(t *testing.T) {
	a := NewFrameCompetitionAnalyzer(framesFixture(), nil, nil)
	un, err := a.DesignUnifiedNarrative(context.Background(), "")
	if err != nil {
		t.Fatalf("DesignUnifiedNarrative: %v", err)
	}

	if _, ok := un.Acknowledgments[narrative.FrameOpportunity]; !ok {
		t.Error("missing acknowledgment for the opportunity frame")
	}
	if _, ok := un.Acknowledgments[narrative.FrameThreat]; !ok {
		t.Error("missing acknowledgment for the threat frame")
	}
	if _, ok := un.Reframes["opportunity_vs_threat"]; !ok {
		t.Errorf("Reframes = %v, want opportunity_vs_threat key", un.Reframes)
	}
	if len(un.BridgingFrames) != 2 {
		t.Errorf("BridgingFrames = %v, want the conflict pair", un.BridgingFrames)
	}
	if un.CoreMessage == "" || un.VisionNarrative == "" {
		t.Error("core message and vision narrative must always be set")
	}
	// One shared concept is not enough for a two-anchor core message.
	if un.CoreMessage != "We're exploring this change together, learning as we go" {
		t.Errorf("CoreMessage = %q", un.CoreMessage)
	}
}

func TestDesignUnifiedNarrativeWithCommonGround(t *testing.T) {
	// Both groups mention both concepts in every story, so both clear the
	// median-frequency bar and anchor the templated core message.
	m := graphport.NewMemory()
	for _, id := range []string{"e1", "e2"} {
		m.AddStory(graphport.Record{
			"id":                 id,
			"summary":            "faster releases without cutting corners",
			"groups":             []string{"engineering"},
			"agency_frame":       "opportunity",
			"concepts_mentioned": []string{"quality", "rollout"},
		})
	}
	for _, id := range []string{"c1", "c2"} {
		m.AddStory(graphport.Record{
			"id":                 id,
			"summary":            "worried this puts customer relationships at risk",
			"groups":             []string{"customer_service"},
			"agency_frame":       "threat",
			"concepts_mentioned": []string{"quality", "rollout"},
		})
	}

	a := NewFrameCompetitionAnalyzer(m, nil, nil)
	un, err := a.DesignUnifiedNarrative(context.Background(), "")
	if err != nil {
		t.Fatalf("DesignUnifiedNarrative: %v", err)
	}

	if len(un.CommonGround) != 2 {
		t.Fatalf("CommonGround = %v, want both shared concepts", un.CommonGround)
	}
	if un.CoreMessage == "We're exploring this change together, learning as we go" {
		t.Error("core message should anchor on common ground when two concepts are shared")
	}
	// Every story touches both common-ground concepts.
	if len(un.BridgingStories) != 4 {
		t.Errorf("BridgingStories = %v, want all four stories", un.BridgingStories)
	}
}

func TestReframeKeyPutsPositiveFrameFirst(t *testing.T) {
	if got := reframeKey(narrative.FrameThreat, narrative.FrameOpportunity); got != "opportunity_vs_threat" {
		t.Errorf("reframeKey = %q, want opportunity_vs_threat", got)
	}
	if got := reframeKey(narrative.FrameOpportunity, narrative.FrameThreat); got != "opportunity_vs_threat" {
		t.Errorf("reframeKey = %q, want opportunity_vs_threat", got)
	}
}
