package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/logging"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/rules"
)

// Culture dimension names, in report order.
const (
	DimExperimentation    = "experimentation"
	DimFailureTolerance   = "failure_tolerance"
	DimAgency             = "agency"
	DimIterationSpeed     = "iteration_speed"
	DimNarrativeDiversity = "narrative_diversity"
)

// CultureDimension is one scored innovation-culture facet with its raw
// marker counts.
type CultureDimension struct {
	Name           string
	Score          float64
	Positive       int
	Negative       int
	Interpretation string
}

// CultureReport scores the organization along innovation-vs-risk-aversion
// dimensions. OverallScore is the unweighted mean of the five dimensions;
// readiness scoring weights its dimensions, culture scoring deliberately
// does not.
type CultureReport struct {
	OverallScore float64
	RiskAversion float64
	Dimensions   []CultureDimension
	Signals      []string

	Evidence        []string
	Interpretation  string
	Recommendations []string
}

// CulturalSignalDetector reads innovation and risk-aversion signals out of
// the whole story snapshot.
type CulturalSignalDetector struct {
	port  graphport.Port
	rules *rules.RuleSet
	log   logging.Logger
}

func NewCulturalSignalDetector(port graphport.Port, rs *rules.RuleSet, log logging.Logger) *CulturalSignalDetector {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CulturalSignalDetector{port: port, rules: rs, log: log.With(logging.Analyzer(NameCulturalSignal))}
}

// AssessInnovationCulture scores five dimensions, each as
// positive/(positive+negative) over marker-matched stories with a 0.5
// neutral prior when no markers match either side.
func (d *CulturalSignalDetector) AssessInnovationCulture(ctx context.Context) (*CultureReport, error) {
	stories, err := allStories(ctx, d.port)
	if err != nil {
		return nil, fmt.Errorf("cultural signal: %w", err)
	}

	report := &CultureReport{Evidence: []string{}}
	if len(stories) == 0 {
		report.OverallScore = 0.5
		report.RiskAversion = 0.5
		report.Interpretation = "insufficient data: no stories to analyze"
		return report, nil
	}

	evidence := make(map[string]bool)
	report.Dimensions = []CultureDimension{
		d.scoreExperimentation(stories, evidence),
		d.scoreFailureTolerance(stories, evidence),
		d.scoreAgency(stories, evidence),
		d.scoreIterationSpeed(stories, evidence),
		scoreNarrativeDiversity(stories),
	}

	var sum float64
	for _, dim := range report.Dimensions {
		sum += dim.Score
		report.Signals = append(report.Signals, dimensionSignal(dim))
	}
	report.OverallScore = narrative.Clamp01(sum / float64(len(report.Dimensions)))
	report.RiskAversion = narrative.Clamp01(1 - report.OverallScore)

	for id := range evidence {
		report.Evidence = append(report.Evidence, id)
	}
	sort.Strings(report.Evidence)

	report.Interpretation = fmt.Sprintf("innovation culture score %.2f (risk aversion %.2f) across %d stories",
		report.OverallScore, report.RiskAversion, len(stories))
	report.Recommendations = cultureRecommendations(report.Dimensions)

	d.log.Info("culture assessed",
		logging.Stories(len(stories)),
		logging.Score(report.OverallScore))
	return report, nil
}

func (d *CulturalSignalDetector) scoreExperimentation(stories []*narrative.Story, evidence map[string]bool) CultureDimension {
	pos, neg := 0, 0
	for _, s := range stories {
		if s.Experimentation || rules.MatchAny(s.Summary, d.rules.Experiment) {
			pos++
			evidence[s.ID] = true
		}
		if rules.MatchAny(s.Summary, d.rules.Blocking) {
			neg++
			evidence[s.ID] = true
		}
	}
	return newDimension(DimExperimentation, pos, neg)
}

// scoreFailureTolerance looks only at failure stories (negative sentiment
// or warning/complication function) and asks whether they are framed as
// lessons or as cautionary tales.
func (d *CulturalSignalDetector) scoreFailureTolerance(stories []*narrative.Story, evidence map[string]bool) CultureDimension {
	pos, neg := 0, 0
	for _, s := range stories {
		isFailure := (s.HasSentiment && s.Sentiment < -0.3) ||
			s.Function == narrative.FunctionWarning ||
			s.Function == narrative.FunctionComplication
		if !isFailure {
			continue
		}
		if rules.MatchAny(s.Summary, d.rules.LearningFraming) {
			pos++
			evidence[s.ID] = true
		}
		if rules.MatchAny(s.Summary, d.rules.WarningFraming) {
			neg++
			evidence[s.ID] = true
		}
	}
	return newDimension(DimFailureTolerance, pos, neg)
}

func (d *CulturalSignalDetector) scoreAgency(stories []*narrative.Story, evidence map[string]bool) CultureDimension {
	return d.scorePair(DimAgency, d.rules.Agency, stories, evidence)
}

func (d *CulturalSignalDetector) scoreIterationSpeed(stories []*narrative.Story, evidence map[string]bool) CultureDimension {
	return d.scorePair(DimIterationSpeed, d.rules.Iteration, stories, evidence)
}

func (d *CulturalSignalDetector) scorePair(name string, pair rules.MarkerPair, stories []*narrative.Story, evidence map[string]bool) CultureDimension {
	pos, neg := 0, 0
	for _, s := range stories {
		if p := rules.Count(s.Summary, pair.Positive); p > 0 {
			pos += p
			evidence[s.ID] = true
		}
		if n := rules.Count(s.Summary, pair.Negative); n > 0 {
			neg += n
			evidence[s.ID] = true
		}
	}
	return newDimension(name, pos, neg)
}

// scoreNarrativeDiversity measures how much of the story volume comes from
// outside the single loudest group.
func scoreNarrativeDiversity(stories []*narrative.Story) CultureDimension {
	byGroup := narrative.GroupStories(stories)
	modal := 0
	for _, gs := range byGroup {
		if len(gs) > modal {
			modal = len(gs)
		}
	}
	outside := len(stories) - modal
	dim := CultureDimension{
		Name:     DimNarrativeDiversity,
		Positive: outside,
		Negative: modal,
		Score:    narrative.Clamp01(float64(outside) / float64(len(stories))),
	}
	dim.Interpretation = fmt.Sprintf("%d of %d stories come from outside the dominant group", outside, len(stories))
	return dim
}

func newDimension(name string, pos, neg int) CultureDimension {
	dim := CultureDimension{
		Name:     name,
		Positive: pos,
		Negative: neg,
		Score:    narrative.Ratio(pos, neg),
	}
	if pos+neg == 0 {
		dim.Interpretation = "insufficient data: no markers matched"
	} else {
		dim.Interpretation = fmt.Sprintf("%d positive vs %d negative signals", pos, neg)
	}
	return dim
}

func dimensionSignal(dim CultureDimension) string {
	switch {
	case dim.Score > 0.6:
		return fmt.Sprintf("strong %s (%d vs %d)", dim.Name, dim.Positive, dim.Negative)
	case dim.Score < 0.4:
		return fmt.Sprintf("weak %s (%d vs %d)", dim.Name, dim.Positive, dim.Negative)
	default:
		return fmt.Sprintf("moderate %s (%d vs %d)", dim.Name, dim.Positive, dim.Negative)
	}
}

func cultureRecommendations(dims []CultureDimension) []string {
	var recs []string
	for _, dim := range dims {
		if dim.Score >= 0.4 {
			continue
		}
		switch dim.Name {
		case DimExperimentation:
			recs = append(recs, "Create safe spaces for small experiments and celebrate the attempts, not just the wins")
		case DimFailureTolerance:
			recs = append(recs, "Reframe failed attempts as lessons; publish what was learned")
		case DimAgency:
			recs = append(recs, "Give teams ownership of how they adopt the change instead of deploying it on them")
		case DimIterationSpeed:
			recs = append(recs, "Shorten approval loops so teams can iterate quickly")
		case DimNarrativeDiversity:
			recs = append(recs, "Surface stories from quieter groups; one group dominates the narrative")
		}
	}
	if len(recs) == 0 {
		recs = []string{"Culture dimensions are healthy; maintain current practices"}
	}
	return recs
}
