// Package dashboard packages an orchestrated report into severity-ordered,
// owner-annotated items for presentation. Pure aggregation and ranking;
// no formatting or I/O.
package dashboard

import (
	"fmt"

	"github.com/kmorrow/storylens/pkg/analysis"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/orchestrator"
)

// Item is one dashboard entry: a risk and the action that retires it.
type Item struct {
	Title         string
	Severity      narrative.Severity
	Owner         string
	Timeline      string
	Action        string
	SuccessMetric string
	Source        string
}

// Dashboard is the packaged view of one analysis run.
type Dashboard struct {
	HealthLabel     string
	CompositeHealth float64
	ReadinessLevel  string
	Headline        string

	// Items are severity-ordered, highest first.
	Items []Item
	// QuickWins are the sub-critical items achievable in the short term.
	QuickWins []Item
	// SectionNotes give a one-line status per analyzer section.
	SectionNotes map[string]string
}

// maxQuickWins caps the quick-win list.
const maxQuickWins = 3

// HealthLabel maps the composite health score onto a coarse label.
func HealthLabel(composite float64) string {
	switch {
	case composite >= 0.7:
		return "healthy"
	case composite >= 0.5:
		return "stable"
	case composite >= 0.3:
		return "strained"
	default:
		return "critical"
	}
}

// Build packages an orchestrator report. The risk-signal and action-plan
// lists are 1:1 and already severity-ordered; Build zips them without
// re-ranking.
func Build(report *orchestrator.Report) *Dashboard {
	d := &Dashboard{
		CompositeHealth: report.CompositeHealth,
		HealthLabel:     HealthLabel(report.CompositeHealth),
		Headline:        report.ExecutiveSummary,
		SectionNotes:    make(map[string]string),
	}
	if report.Readiness != nil {
		d.ReadinessLevel = string(report.Readiness.Level)
	}

	for i, signal := range report.RiskSignals {
		item := Item{
			Title:    signal.Description,
			Severity: signal.Severity,
			Source:   signal.Source,
		}
		if i < len(report.ActionPlan) {
			action := report.ActionPlan[i]
			item.Owner = action.Owner
			item.Timeline = action.Timeline
			item.Action = action.Action
			item.SuccessMetric = action.SuccessMetric
		}
		d.Items = append(d.Items, item)
	}

	for _, item := range d.Items {
		if item.Severity >= narrative.SeverityCritical {
			continue
		}
		if item.Timeline == orchestrator.TimelineImmediate {
			continue
		}
		d.QuickWins = append(d.QuickWins, item)
		if len(d.QuickWins) == maxQuickWins {
			break
		}
	}

	d.SectionNotes = sectionNotes(report)
	return d
}

func sectionNotes(report *orchestrator.Report) map[string]string {
	notes := make(map[string]string, len(report.Sections))
	for name, status := range report.Sections {
		if status.Failed {
			notes[name] = fmt.Sprintf("failed: %s", status.Err)
			continue
		}
		switch name {
		case analysis.NameNarrativeGap:
			if report.Gap != nil {
				notes[name] = fmt.Sprintf("gap severity %s", report.Gap.Severity)
			}
		case analysis.NameFrameCompetition:
			if report.Frames != nil {
				notes[name] = fmt.Sprintf("%d frame conflicts", len(report.Frames.Conflicts))
			}
		case analysis.NameCulturalSignal:
			if report.Culture != nil {
				notes[name] = fmt.Sprintf("innovation culture %.2f", report.Culture.OverallScore)
			}
		case analysis.NameResistanceMapper:
			if report.Resistance != nil {
				notes[name] = fmt.Sprintf("%d resistance hotspots", len(report.Resistance.Hotspots))
			}
		case analysis.NameReadinessScorer:
			if report.Readiness != nil {
				notes[name] = fmt.Sprintf("readiness %.3f (%s)", report.Readiness.OverallReadiness, report.Readiness.Level)
			}
		}
	}
	return notes
}
