package analysis

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/narrative"
)

// resistanceFixture models a customer_service group where fear-driven
// resistance dominates, next to a supportive engineering group.
func resistanceFixture() *graphport.Memory {
	m := graphport.NewMemory()
	for i := 0; i < 8; i++ {
		m.AddStory(graphport.Record{
			"id":        fmt.Sprintf("cs%d", i),
			"summary":   "worried about my job once the bot takes over",
			"groups":    []string{"customer_service"},
			"sentiment": -0.5,
		})
	}
	for i := 0; i < 2; i++ {
		m.AddStory(graphport.Record{
			"id":        fmt.Sprintf("cs-ok%d", i),
			"summary":   "it handled the easy tickets fine",
			"groups":    []string{"customer_service"},
			"sentiment": 0.5,
		})
	}
	for i := 0; i < 4; i++ {
		m.AddStory(graphport.Record{
			"id":        fmt.Sprintf("eng%d", i),
			"summary":   "we tried it on the backlog and it saved a day",
			"groups":    []string{"engineering"},
			"sentiment": 0.6,
		})
	}
	return m
}

func TestMapResistanceLandscapeHotspot(t *testing.T) {
	mapper := NewResistanceMapper(resistanceFixture(), nil, nil)
	report, err := mapper.MapResistanceLandscape(context.Background())
	if err != nil {
		t.Fatalf("MapResistanceLandscape: %v", err)
	}

	cs, ok := report.ByGroup["customer_service"]
	if !ok {
		t.Fatal("customer_service missing from ByGroup")
	}
	if cs.ResistanceCount != 8 || cs.SupportCount != 2 {
		t.Errorf("counts = %d resistance, %d support, want 8 and 2", cs.ResistanceCount, cs.SupportCount)
	}
	if cs.Level <= hotspotThreshold {
		t.Errorf("level = %v, want above %v", cs.Level, hotspotThreshold)
	}
	if cs.PrimaryCause != "threat_perception" {
		t.Errorf("PrimaryCause = %q, want threat_perception", cs.PrimaryCause)
	}

	if len(report.Hotspots) != 1 {
		t.Fatalf("got %d hotspots, want only customer_service", len(report.Hotspots))
	}
	if report.Hotspots[0].Group != "customer_service" {
		t.Errorf("hotspot = %+v", report.Hotspots[0])
	}

	eng := report.ByGroup["engineering"]
	if eng.Level > hotspotThreshold {
		t.Errorf("engineering level = %v, should not be a hotspot", eng.Level)
	}
	if eng.PrimaryCause != "unknown" {
		t.Errorf("engineering PrimaryCause = %q, want unknown", eng.PrimaryCause)
	}
}

func TestMapResistanceLandscapePatterns(t *testing.T) {
	mapper := NewResistanceMapper(resistanceFixture(), nil, nil)
	report, err := mapper.MapResistanceLandscape(context.Background())
	if err != nil {
		t.Fatalf("MapResistanceLandscape: %v", err)
	}

	cs := report.ByGroup["customer_service"]
	if len(cs.Patterns) == 0 {
		t.Fatal("expected at least one pattern match")
	}
	top := cs.Patterns[0]
	if top.Name != "fearful" {
		t.Errorf("top pattern = %q, want fearful", top.Name)
	}
	if top.Severity != narrative.SeverityHigh {
		t.Errorf("fearful severity = %v, want high", top.Severity)
	}
	if top.Frequency != 8 {
		t.Errorf("fearful frequency = %d, want 8", top.Frequency)
	}
	if len(top.Examples) != 3 {
		t.Errorf("examples capped at 3, got %d", len(top.Examples))
	}

	if len(report.CommonPatterns) == 0 || report.CommonPatterns[0].Name != "fearful" {
		t.Errorf("CommonPatterns = %+v, want fearful first", report.CommonPatterns)
	}
	if len(report.Recommendations) == 0 {
		t.Fatal("expected recommendations for a hotspot")
	}
}

func TestMapResistanceLandscapeEmpty(t *testing.T) {
	mapper := NewResistanceMapper(graphport.NewMemory(), nil, nil)
	report, err := mapper.MapResistanceLandscape(context.Background())
	if err != nil {
		t.Fatalf("MapResistanceLandscape: %v", err)
	}
	if len(report.ByGroup) != 0 || len(report.Hotspots) != 0 {
		t.Errorf("empty snapshot produced groups: %+v", report)
	}
	if len(report.Evidence) != 0 {
		t.Errorf("Evidence = %v, want empty", report.Evidence)
	}
}

func TestRecencyWeighting(t *testing.T) {
	reference := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	halfLife := 30 * 24 * time.Hour

	m := graphport.NewMemory()
	m.AddStory(graphport.Record{
		"id":        "fresh",
		"summary":   "they will replace our roles",
		"groups":    []string{"ops"},
		"sentiment": -0.5,
		"timestamp": reference.Format(time.RFC3339),
	})
	m.AddStory(graphport.Record{
		"id":        "stale",
		"summary":   "they will replace our roles",
		"groups":    []string{"ops"},
		"sentiment": -0.5,
		"timestamp": reference.Add(-halfLife).Format(time.RFC3339),
	})

	weighted := NewResistanceMapper(m, nil, nil, WithRecencyWeighting(halfLife, reference))
	report, err := weighted.MapResistanceLandscape(context.Background())
	if err != nil {
		t.Fatalf("MapResistanceLandscape: %v", err)
	}

	ops := report.ByGroup["ops"]
	var threat *RootCauseScore
	for i := range ops.RootCauses {
		if ops.RootCauses[i].Name == "threat_perception" {
			threat = &ops.RootCauses[i]
		}
	}
	if threat == nil {
		t.Fatal("threat_perception not ranked")
	}
	if threat.EvidenceCount != 2 {
		t.Errorf("EvidenceCount = %d, want 2", threat.EvidenceCount)
	}
	// Fresh story weighs 1, the half-life-old one 0.5.
	if math.Abs(threat.Strength-1.5) > 1e-9 {
		t.Errorf("Strength = %v, want 1.5", threat.Strength)
	}

	// Without the option, strength is a plain count.
	plain := NewResistanceMapper(m, nil, nil)
	report, err = plain.MapResistanceLandscape(context.Background())
	if err != nil {
		t.Fatalf("MapResistanceLandscape: %v", err)
	}
	for _, cause := range report.ByGroup["ops"].RootCauses {
		if cause.Name == "threat_perception" && math.Abs(cause.Strength-2) > 1e-9 {
			t.Errorf("unweighted Strength = %v, want 2", cause.Strength)
		}
	}
}

func TestAnalyzeResistanceSpread(t *testing.T) {
	m := graphport.NewMemory()
	m.AddStory(graphport.Record{
		"id":        "tale",
		"summary":   "the migration went badly",
		"groups":    []string{"engineering"},
		"sentiment": -0.6,
	})
	m.AddStory(graphport.Record{
		"id":        "echo1",
		"summary":   "heard the same happened to engineering",
		"groups":    []string{"customer_service"},
		"sentiment": -0.4,
	})
	m.AddStory(graphport.Record{
		"id":      "echo2",
		"summary": "sounds like a warning to the rest of us",
		"groups":  []string{"operations"},
		// No sentiment; the warning function marks the citer as negative.
		"narrative_function": "warning",
	})
	m.AddStory(graphport.Record{
		"id":        "praise",
		"summary":   "engineering made it work in the end",
		"groups":    []string{"sales"},
		"sentiment": 0.7,
	})
	m.AddReference("echo1", "tale")
	m.AddReference("echo2", "tale")
	m.AddReference("praise", "tale") // positive citer, excluded

	mapper := NewResistanceMapper(m, nil, nil)
	report, err := mapper.AnalyzeResistanceSpread(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeResistanceSpread: %v", err)
	}

	if len(report.References) != 2 {
		t.Fatalf("got %d references, want 2 negative citations", len(report.References))
	}
	if len(report.InfluentialStories) != 1 {
		t.Fatalf("InfluentialStories = %+v, want exactly the cited tale", report.InfluentialStories)
	}
	top := report.InfluentialStories[0]
	if top.StoryID != "tale" || top.InDegree != 2 || top.Group != "engineering" {
		t.Errorf("top influence = %+v", top)
	}
	if math.Abs(report.Velocity-0.2) > 1e-9 {
		t.Errorf("Velocity = %v, want 0.2", report.Velocity)
	}
	if report.Spreading {
		t.Error("two citations should not count as spreading")
	}
}
