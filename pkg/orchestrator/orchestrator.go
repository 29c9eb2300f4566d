// Package orchestrator runs the five analyzers, aggregates their reports
// into a composite organizational health score, and synthesizes the
// executive summary, risk signals, and action plan.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kmorrow/storylens/pkg/analysis"
	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/logging"
	"github.com/kmorrow/storylens/pkg/metrics"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/rules"
)

// SectionWeights are the composite weights over the five analyzer
// sections. They sum to 1.0; when a section fails the remaining weights
// are proportionally renormalized.
var SectionWeights = map[string]float64{
	analysis.NameNarrativeGap:     0.15,
	analysis.NameFrameCompetition: 0.15,
	analysis.NameCulturalSignal:   0.20,
	analysis.NameResistanceMapper: 0.20,
	analysis.NameReadinessScorer:  0.30,
}

// sectionOrder fixes iteration order for deterministic output.
var sectionOrder = []string{
	analysis.NameNarrativeGap,
	analysis.NameFrameCompetition,
	analysis.NameCulturalSignal,
	analysis.NameResistanceMapper,
	analysis.NameReadinessScorer,
}

// SectionStatus records whether an analyzer section completed. A failed
// section is excluded from the composite.
type SectionStatus struct {
	Analyzer string
	Failed   bool
	Err      string
}

// RiskSignal is one analyzer-flagged issue with a severity and a single
// recommended action.
type RiskSignal struct {
	Source        string
	Severity      narrative.Severity
	Description   string
	Action        string
	EvidenceCount int
}

// ActionItem is a risk signal turned into a plan entry. Priority inherits
// directly from the signal severity.
type ActionItem struct {
	Priority      narrative.Severity
	Action        string
	Owner         string
	Timeline      string
	SuccessMetric string
}

// Timeline buckets for action items.
const (
	TimelineImmediate  = "immediate"
	TimelineShortTerm  = "short_term"
	TimelineMediumTerm = "medium_term"
)

// Report is the full orchestrated analysis: the five sub-reports plus the
// cross-cutting synthesis.
type Report struct {
	InitiativeID string

	Gap        *analysis.GapReport
	Frames     *analysis.FrameCompetitionReport
	Culture    *analysis.CultureReport
	Resistance *analysis.ResistanceReport
	Readiness  *analysis.ReadinessReport

	Sections map[string]SectionStatus
	// EffectiveWeights are the section weights actually used for the
	// composite, renormalized over the sections that succeeded.
	EffectiveWeights map[string]float64
	CompositeHealth  float64

	ExecutiveSummary string
	RiskSignals      []RiskSignal
	ActionPlan       []ActionItem
}

// Orchestrator wires the five analyzers to a shared port and rule set.
type Orchestrator struct {
	gap        *analysis.NarrativeGapAnalyzer
	frames     *analysis.FrameCompetitionAnalyzer
	culture    *analysis.CulturalSignalDetector
	resistance *analysis.ResistanceMapper
	readiness  *analysis.AdoptionReadinessScorer

	log     logging.Logger
	metrics *metrics.Registry
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics instruments analyzer runs and report production.
func WithMetrics(reg *metrics.Registry) Option {
	return func(o *Orchestrator) { o.metrics = reg }
}

// New builds an orchestrator over a data port. Nil rules or logger fall
// back to defaults, matching the analyzer constructors.
func New(port graphport.Port, rs *rules.RuleSet, log logging.Logger, opts ...Option) *Orchestrator {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	o := &Orchestrator{
		gap:        analysis.NewNarrativeGapAnalyzer(port, rs, log),
		frames:     analysis.NewFrameCompetitionAnalyzer(port, rs, log),
		culture:    analysis.NewCulturalSignalDetector(port, rs, log),
		resistance: analysis.NewResistanceMapper(port, rs, log),
		readiness:  analysis.NewAdoptionReadinessScorer(port, rs, log),
		log:        log.With(logging.Component("orchestrator")),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunComprehensiveAnalysis dispatches the five analyzers concurrently and
// aggregates their results. A failing analyzer does not abort the run; its
// section is flagged and the composite weights are renormalized over the
// survivors. Only context cancellation aborts the whole call.
func (o *Orchestrator) RunComprehensiveAnalysis(ctx context.Context, initiativeID string) (*Report, error) {
	report := &Report{
		InitiativeID: initiativeID,
		Sections:     make(map[string]SectionStatus),
	}

	type run struct {
		name string
		err  error
	}
	results := make([]run, len(sectionOrder))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results[0] = run{name: analysis.NameNarrativeGap, err: o.timed(analysis.NameNarrativeGap, func() error {
			var err error
			report.Gap, err = o.gap.Analyze(gctx, initiativeID)
			return err
		})}
		return nil
	})
	g.Go(func() error {
		results[1] = run{name: analysis.NameFrameCompetition, err: o.timed(analysis.NameFrameCompetition, func() error {
			var err error
			report.Frames, err = o.frames.MapCompetingFrames(gctx)
			return err
		})}
		return nil
	})
	g.Go(func() error {
		results[2] = run{name: analysis.NameCulturalSignal, err: o.timed(analysis.NameCulturalSignal, func() error {
			var err error
			report.Culture, err = o.culture.AssessInnovationCulture(gctx)
			return err
		})}
		return nil
	})
	g.Go(func() error {
		results[3] = run{name: analysis.NameResistanceMapper, err: o.timed(analysis.NameResistanceMapper, func() error {
			var err error
			report.Resistance, err = o.resistance.MapResistanceLandscape(gctx)
			return err
		})}
		return nil
	})
	g.Go(func() error {
		results[4] = run{name: analysis.NameReadinessScorer, err: o.timed(analysis.NameReadinessScorer, func() error {
			var err error
			report.Readiness, err = o.readiness.AssessReadiness(gctx, initiativeID)
			return err
		})}
		return nil
	})
	// Goroutines report per-section errors through results, never through
	// the group, so a failing analyzer cannot cancel its peers.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range results {
		status := SectionStatus{Analyzer: r.name}
		if r.err != nil {
			status.Failed = true
			status.Err = r.err.Error()
			o.log.Error("analyzer failed", logging.Analyzer(r.name), logging.Error(r.err))
			if o.metrics != nil {
				o.metrics.RecordSectionFailure(r.name)
			}
		}
		report.Sections[r.name] = status
	}

	report.EffectiveWeights = renormalizedWeights(report.Sections)
	report.CompositeHealth = o.composite(report)
	report.RiskSignals = collectRiskSignals(report)
	report.ActionPlan = buildActionPlan(report.RiskSignals)
	report.ExecutiveSummary = executiveSummary(report)

	if o.metrics != nil {
		status := "success"
		for _, s := range report.Sections {
			if s.Failed {
				status = "partial"
				break
			}
		}
		dims := map[string]float64{}
		if report.Readiness != nil {
			for _, d := range report.Readiness.Dimensions {
				dims[d.Name] = d.Score
			}
		}
		o.metrics.RecordReport(status, report.CompositeHealth, dims)
	}

	o.log.Info("comprehensive analysis complete",
		logging.Initiative(initiativeID),
		logging.Float64("composite_health", report.CompositeHealth),
		logging.Count(len(report.RiskSignals)))
	return report, nil
}

func (o *Orchestrator) timed(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if o.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		o.metrics.RecordAnalysis(name, status, time.Since(start), 0)
	}
	return err
}

// renormalizedWeights rescales the section weights over the sections that
// succeeded so they sum back to 1.0. All sections failed leaves an empty
// map and a zero composite.
func renormalizedWeights(sections map[string]SectionStatus) map[string]float64 {
	var surviving float64
	for _, name := range sectionOrder {
		if !sections[name].Failed {
			surviving += SectionWeights[name]
		}
	}
	weights := make(map[string]float64)
	if surviving == 0 {
		return weights
	}
	for _, name := range sectionOrder {
		if !sections[name].Failed {
			weights[name] = SectionWeights[name] / surviving
		}
	}
	return weights
}

// composite folds each section's headline health score through the
// effective weights.
func (o *Orchestrator) composite(report *Report) float64 {
	var sum float64
	for name, weight := range report.EffectiveWeights {
		sum += sectionHealth(report, name) * weight
	}
	return narrative.Clamp01(sum)
}

// sectionHealth extracts the 0-1 headline health from one section. Gap
// and resistance style scores invert: a big gap is bad health.
func sectionHealth(report *Report, name string) float64 {
	switch name {
	case analysis.NameNarrativeGap:
		if report.Gap == nil {
			return 0.5
		}
		return narrative.Clamp01(1 - report.Gap.SeverityScore)
	case analysis.NameFrameCompetition:
		if report.Frames == nil {
			return 0.5
		}
		var conflict float64
		for _, c := range report.Frames.Conflicts {
			conflict += c.Severity
		}
		return narrative.Clamp01(1 - conflict)
	case analysis.NameCulturalSignal:
		if report.Culture == nil {
			return 0.5
		}
		return report.Culture.OverallScore
	case analysis.NameResistanceMapper:
		if report.Resistance == nil || len(report.Resistance.ByGroup) == 0 {
			return 0.5
		}
		var level float64
		for _, gr := range report.Resistance.ByGroup {
			level += gr.Level
		}
		return narrative.Clamp01(1 - level/float64(len(report.Resistance.ByGroup)))
	case analysis.NameReadinessScorer:
		if report.Readiness == nil {
			return 0.5
		}
		return report.Readiness.OverallReadiness
	}
	return 0.5
}

// executiveSummary fills the fixed-format template from the computed
// scores. Templating only; no free text is generated.
func executiveSummary(report *Report) string {
	summary := fmt.Sprintf("Composite organizational health: %.2f.", report.CompositeHealth)

	if report.Readiness != nil {
		summary += fmt.Sprintf(" Adoption readiness is %s (%.3f) with trajectory %s.",
			report.Readiness.Level, report.Readiness.OverallReadiness, report.Readiness.Forecast.Trajectory)
		if weakest := weakestDimension(report.Readiness); weakest != "" {
			summary += fmt.Sprintf(" Weakest dimension: %s.", weakest)
		}
	}
	if report.Gap != nil && report.Gap.Severity != analysis.GapMinor {
		summary += fmt.Sprintf(" Narrative gap severity is %s.", report.Gap.Severity)
	}
	if report.Resistance != nil && len(report.Resistance.Hotspots) > 0 {
		top := report.Resistance.Hotspots[0]
		summary += fmt.Sprintf(" Strongest resistance: %s (level %.2f, %s).", top.Group, top.Level, top.PrimaryCause)
	}
	if len(report.RiskSignals) > 0 {
		summary += fmt.Sprintf(" Top risk: %s.", report.RiskSignals[0].Description)
	}

	var failed []string
	for _, name := range sectionOrder {
		if report.Sections[name].Failed {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		summary += fmt.Sprintf(" Incomplete sections: %v.", failed)
	}
	return summary
}

func weakestDimension(r *analysis.ReadinessReport) string {
	name := ""
	lowest := 2.0
	for _, d := range r.Dimensions {
		if d.Score < lowest {
			lowest = d.Score
			name = d.Name
		}
	}
	return name
}

// collectRiskSignals unions the analyzer-flagged issues, sorted by
// severity descending then evidence volume descending.
func collectRiskSignals(report *Report) []RiskSignal {
	var signals []RiskSignal

	if report.Gap != nil {
		switch report.Gap.Severity {
		case analysis.GapCritical:
			signals = append(signals, RiskSignal{
				Source:        analysis.NameNarrativeGap,
				Severity:      narrative.SeverityCritical,
				Description:   "official and actual narratives have diverged critically",
				Action:        firstOr(report.Gap.Recommendations, "align leadership messaging with employee experience"),
				EvidenceCount: len(report.Gap.Evidence),
			})
		case analysis.GapSignificant:
			signals = append(signals, RiskSignal{
				Source:        analysis.NameNarrativeGap,
				Severity:      narrative.SeverityMedium,
				Description:   "notable gap between official and actual narratives",
				Action:        firstOr(report.Gap.Recommendations, "target communication at diverging groups"),
				EvidenceCount: len(report.Gap.Evidence),
			})
		}
	}

	if report.Frames != nil {
		for _, c := range report.Frames.Conflicts {
			severity := narrative.SeverityMedium
			if c.Severity >= 0.3 {
				severity = narrative.SeverityHigh
			}
			signals = append(signals, RiskSignal{
				Source:        analysis.NameFrameCompetition,
				Severity:      severity,
				Description:   fmt.Sprintf("%s (%s) and %s (%s) hold opposing frames", c.GroupA, c.FrameA, c.GroupB, c.FrameB),
				Action:        fmt.Sprintf("bridge %s and %s with a unified narrative", c.GroupA, c.GroupB),
				EvidenceCount: len(report.Frames.Evidence),
			})
		}
	}

	if report.Culture != nil && report.Culture.RiskAversion > 0.6 {
		severity := narrative.SeverityMedium
		if report.Culture.RiskAversion > 0.7 {
			severity = narrative.SeverityHigh
		}
		signals = append(signals, RiskSignal{
			Source:        analysis.NameCulturalSignal,
			Severity:      severity,
			Description:   fmt.Sprintf("risk-averse culture (risk aversion %.2f)", report.Culture.RiskAversion),
			Action:        firstOr(report.Culture.Recommendations, "create safe spaces for small experiments"),
			EvidenceCount: len(report.Culture.Evidence),
		})
	}

	if report.Resistance != nil {
		for _, h := range report.Resistance.Hotspots {
			severity := narrative.SeverityHigh
			if h.Level > 0.8 {
				severity = narrative.SeverityCritical
			}
			gr := report.Resistance.ByGroup[h.Group]
			signals = append(signals, RiskSignal{
				Source:        analysis.NameResistanceMapper,
				Severity:      severity,
				Description:   fmt.Sprintf("resistance hotspot in %s (level %.2f, cause %s)", h.Group, h.Level, h.PrimaryCause),
				Action:        fmt.Sprintf("address %s in %s", h.PrimaryCause, h.Group),
				EvidenceCount: gr.ResistanceCount,
			})
		}
	}

	if report.Readiness != nil {
		for _, barrier := range report.Readiness.Forecast.CriticalBarriers {
			signals = append(signals, RiskSignal{
				Source:        analysis.NameReadinessScorer,
				Severity:      narrative.SeverityHigh,
				Description:   fmt.Sprintf("readiness dimension %s is critically low", barrier),
				Action:        fmt.Sprintf("raise %s before expanding the rollout", barrier),
				EvidenceCount: report.Readiness.StoryCount,
			})
		}
		if report.Readiness.Level == analysis.LevelStalled {
			signals = append(signals, RiskSignal{
				Source:        analysis.NameReadinessScorer,
				Severity:      narrative.SeverityCritical,
				Description:   "overall adoption readiness is stalled",
				Action:        firstOr(report.Readiness.Recommendations, "pause expansion and rebuild foundations"),
				EvidenceCount: report.Readiness.StoryCount,
			})
		}
	}

	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Severity != signals[j].Severity {
			return signals[i].Severity > signals[j].Severity
		}
		if signals[i].EvidenceCount != signals[j].EvidenceCount {
			return signals[i].EvidenceCount > signals[j].EvidenceCount
		}
		return signals[i].Description < signals[j].Description
	})
	return signals
}

// suggestedOwners maps a signal's source analyzer to the role that should
// own the resulting action.
var suggestedOwners = map[string]string{
	analysis.NameNarrativeGap:     "communications lead",
	analysis.NameFrameCompetition: "change management lead",
	analysis.NameCulturalSignal:   "org development lead",
	analysis.NameResistanceMapper: "team leads",
	analysis.NameReadinessScorer:  "executive sponsor",
}

var successMetrics = map[string]string{
	analysis.NameNarrativeGap:     "narrative gap severity drops one level in the next assessment",
	analysis.NameFrameCompetition: "conflicting group pairs decrease in the next assessment",
	analysis.NameCulturalSignal:   "innovation culture score rises above 0.5",
	analysis.NameResistanceMapper: "hotspot resistance level falls below 0.6",
	analysis.NameReadinessScorer:  "composite readiness rises one level",
}

// buildActionPlan maps risk signals 1:1 to action items. Priority inherits
// the signal severity; timeline buckets follow a fixed mapping table.
func buildActionPlan(signals []RiskSignal) []ActionItem {
	plan := make([]ActionItem, 0, len(signals))
	for _, s := range signals {
		timeline := TimelineMediumTerm
		switch s.Severity {
		case narrative.SeverityCritical:
			timeline = TimelineImmediate
		case narrative.SeverityHigh:
			timeline = TimelineShortTerm
		}
		plan = append(plan, ActionItem{
			Priority:      s.Severity,
			Action:        s.Action,
			Owner:         suggestedOwners[s.Source],
			Timeline:      timeline,
			SuccessMetric: successMetrics[s.Source],
		})
	}
	return plan
}

func firstOr(list []string, fallback string) string {
	if len(list) > 0 {
		return list[0]
	}
	return fallback
}
