package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/logging"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/rules"
)

// Readiness dimension names, in report and weight order.
const (
	DimNarrativeAlignment  = "narrative_alignment"
	DimCulturalReceptivity = "cultural_receptivity"
	DimTrustFoundation     = "trust_foundation"
	DimLearningOrientation = "learning_orientation"
	DimLeadershipCoherence = "leadership_coherence"
	DimCoordination        = "coordination"
)

// ReadinessDimensionOrder fixes the iteration order for the six dimensions.
var ReadinessDimensionOrder = []string{
	DimNarrativeAlignment,
	DimCulturalReceptivity,
	DimTrustFoundation,
	DimLearningOrientation,
	DimLeadershipCoherence,
	DimCoordination,
}

// ReadinessWeights are the fixed dimension weights. They sum to exactly
// 1.00, which is a tested invariant.
var ReadinessWeights = map[string]float64{
	DimNarrativeAlignment:  0.20,
	DimCulturalReceptivity: 0.20,
	DimTrustFoundation:     0.20,
	DimLearningOrientation: 0.15,
	DimLeadershipCoherence: 0.15,
	DimCoordination:        0.10,
}

// ReadinessLevel is the ordinal classification of the composite score.
type ReadinessLevel string

const (
	LevelReady    ReadinessLevel = "ready"
	LevelCautious ReadinessLevel = "cautious"
	LevelAtRisk   ReadinessLevel = "at_risk"
	LevelStalled  ReadinessLevel = "stalled"
)

// Trend classifies the sentiment time series.
type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNegative Trend = "negative"
	TrendFlat     Trend = "flat"
)

// Trajectory is the forecast label.
type Trajectory string

const (
	TrajectoryAccelerating Trajectory = "accelerating"
	TrajectoryStalling     Trajectory = "stalling"
	TrajectoryUncertain    Trajectory = "uncertain"
)

// ReadinessDimension is one scored facet with its weight and raw counts.
type ReadinessDimension struct {
	Name           string
	Score          float64
	Weight         float64
	Positive       int
	Negative       int
	Interpretation string
}

// Forecast is the deterministic trajectory prediction. It is a pure, total
// function of the trend label and two dimension scores.
type Forecast struct {
	Trajectory       Trajectory
	Trend            Trend
	Confidence       string
	CriticalBarriers []string
	Strengths        []string
}

// ReadinessReport is the composite readiness assessment.
type ReadinessReport struct {
	InitiativeID     string
	OverallReadiness float64
	Level            ReadinessLevel
	Dimensions       []ReadinessDimension
	Forecast         Forecast
	StoryCount       int

	Strengths       []string
	Risks           []string
	Evidence        []string
	Interpretation  string
	Recommendations []string
}

// AdoptionReadinessScorer combines six weighted readiness dimensions into
// one composite score and forecasts trajectory.
type AdoptionReadinessScorer struct {
	port  graphport.Port
	rules *rules.RuleSet
	log   logging.Logger
}

func NewAdoptionReadinessScorer(port graphport.Port, rs *rules.RuleSet, log logging.Logger) *AdoptionReadinessScorer {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AdoptionReadinessScorer{port: port, rules: rs, log: log.With(logging.Analyzer(NameReadinessScorer))}
}

// CompositeReadiness computes the weighted overall score from per-dimension
// scores, clamped into [0,1]. Missing dimensions contribute nothing.
func CompositeReadiness(scores map[string]float64) float64 {
	var sum float64
	for _, name := range ReadinessDimensionOrder {
		if score, ok := scores[name]; ok {
			sum += score * ReadinessWeights[name]
		}
	}
	return narrative.Clamp01(sum)
}

// ClassifyReadiness maps the composite score onto the ordinal level.
func ClassifyReadiness(overall float64) ReadinessLevel {
	switch {
	case overall >= 0.7:
		return LevelReady
	case overall >= 0.5:
		return LevelCautious
	case overall >= 0.3:
		return LevelAtRisk
	default:
		return LevelStalled
	}
}

// ForecastTrajectory is the forecast state machine. The stalling rule
// dominates: a negative trend or weak trust forecasts stalling regardless
// of receptivity.
func ForecastTrajectory(trend Trend, receptivity, trust float64) Trajectory {
	if trend == TrendNegative || trust < 0.4 {
		return TrajectoryStalling
	}
	if trend == TrendPositive && receptivity > 0.6 {
		return TrajectoryAccelerating
	}
	return TrajectoryUncertain
}

// AssessReadiness scores the six dimensions over the snapshot and derives
// the composite, level, and forecast. An empty initiativeID assesses the
// whole snapshot; a named initiative restricts to its actual story set.
func (sc *AdoptionReadinessScorer) AssessReadiness(ctx context.Context, initiativeID string) (*ReadinessReport, error) {
	var stories []*narrative.Story
	var err error
	if initiativeID != "" {
		stories, err = initiativeStories(ctx, sc.port, initiativeID, graphport.StoryActual)
	} else {
		stories, err = allStories(ctx, sc.port)
	}
	if err != nil {
		return nil, fmt.Errorf("readiness scorer: %w", err)
	}

	report := &ReadinessReport{
		InitiativeID: initiativeID,
		StoryCount:   len(stories),
		Evidence:     []string{},
	}

	evidence := make(map[string]bool)
	report.Dimensions = []ReadinessDimension{
		sc.scoreNarrativeAlignment(stories),
		sc.scoreMarkerDimension(DimCulturalReceptivity, sc.rules.Innovation, stories, evidence),
		sc.scoreMarkerDimension(DimTrustFoundation, sc.rules.Trust, stories, evidence),
		sc.scoreMarkerDimension(DimLearningOrientation, sc.rules.Learning, stories, evidence),
		sc.scoreLeadershipCoherence(stories, evidence),
		sc.scoreMarkerDimension(DimCoordination, sc.rules.Coordination, stories, evidence),
	}

	scores := make(map[string]float64, len(report.Dimensions))
	for i := range report.Dimensions {
		report.Dimensions[i].Weight = ReadinessWeights[report.Dimensions[i].Name]
		scores[report.Dimensions[i].Name] = report.Dimensions[i].Score
	}
	report.OverallReadiness = CompositeReadiness(scores)
	report.Level = ClassifyReadiness(report.OverallReadiness)

	trend := classifyTrend(stories)
	report.Forecast = Forecast{
		Trajectory: ForecastTrajectory(trend, scores[DimCulturalReceptivity], scores[DimTrustFoundation]),
		Trend:      trend,
		Confidence: forecastConfidence(len(stories)),
	}
	for _, name := range ReadinessDimensionOrder {
		switch {
		case scores[name] < 0.4:
			report.Forecast.CriticalBarriers = append(report.Forecast.CriticalBarriers, name)
			report.Risks = append(report.Risks, fmt.Sprintf("%s is a critical barrier (%.2f)", name, scores[name]))
		case scores[name] > 0.7:
			report.Forecast.Strengths = append(report.Forecast.Strengths, name)
			report.Strengths = append(report.Strengths, fmt.Sprintf("%s is a strength (%.2f)", name, scores[name]))
		}
	}

	for id := range evidence {
		report.Evidence = append(report.Evidence, id)
	}
	sort.Strings(report.Evidence)

	if len(stories) == 0 {
		report.Interpretation = "insufficient data: no stories to assess, all dimensions at the neutral prior"
	} else {
		report.Interpretation = fmt.Sprintf("overall readiness %.3f (%s), trajectory %s over %d stories",
			report.OverallReadiness, report.Level, report.Forecast.Trajectory, len(stories))
	}
	report.Recommendations = readinessRecommendations(report)

	sc.log.Info("readiness assessed",
		logging.Initiative(initiativeID),
		logging.Stories(len(stories)),
		logging.Score(report.OverallReadiness),
		logging.String("trajectory", string(report.Forecast.Trajectory)))
	return report, nil
}

// scoreNarrativeAlignment averages pairwise compatibility over every group
// pair: frame agreement, sentiment closeness, and shared emphasis themes.
func (sc *AdoptionReadinessScorer) scoreNarrativeAlignment(stories []*narrative.Story) ReadinessDimension {
	dim := ReadinessDimension{Name: DimNarrativeAlignment}
	byGroup := narrative.GroupStories(stories)
	if len(byGroup) < 2 {
		dim.Score = 0.5
		dim.Interpretation = "insufficient data: fewer than two groups to compare"
		return dim
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var total float64
	pairs := 0
	for i, ga := range groups {
		for _, gb := range groups[i+1:] {
			total += sc.pairAlignment(byGroup[ga], byGroup[gb])
			pairs++
		}
	}
	dim.Score = narrative.Clamp01(total / float64(pairs))
	dim.Interpretation = fmt.Sprintf("mean alignment over %d group pairs", pairs)
	return dim
}

func (sc *AdoptionReadinessScorer) pairAlignment(a, b []*narrative.Story) float64 {
	frameAlign := 0.5
	fa, fb := dominantGroupFrame(a, sc.rules), dominantGroupFrame(b, sc.rules)
	switch {
	case fa == narrative.FrameUnknown || fb == narrative.FrameUnknown:
	case fa == fb:
		frameAlign = 1
	case narrative.OpposingFrames(fa, fb):
		frameAlign = 0
	}

	sentimentAlign := 1 - math.Abs(narrative.MeanSentiment(a)-narrative.MeanSentiment(b))/2

	themeAlign := narrative.Jaccard(sc.themeSet(a), sc.themeSet(b))

	return (frameAlign + sentimentAlign + themeAlign) / 3
}

func (sc *AdoptionReadinessScorer) themeSet(stories []*narrative.Story) map[string]bool {
	themes := make(map[string]bool)
	for _, s := range stories {
		for _, theme := range sc.rules.ClassifyEmphasis(s.Summary) {
			themes[theme] = true
		}
	}
	return themes
}

func (sc *AdoptionReadinessScorer) scoreMarkerDimension(name string, pair rules.MarkerPair, stories []*narrative.Story, evidence map[string]bool) ReadinessDimension {
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
	dim := ReadinessDimension{Name: name, Positive: pos, Negative: neg, Score: narrative.Ratio(pos, neg)}
	if pos+neg == 0 {
		dim.Interpretation = "insufficient data: no markers matched"
	} else {
		dim.Interpretation = fmt.Sprintf("%d positive vs %d negative signals", pos, neg)
	}
	return dim
}

// scoreLeadershipCoherence checks whether leadership groups tell a
// consistent story: one frame, stable sentiment, shared themes.
func (sc *AdoptionReadinessScorer) scoreLeadershipCoherence(stories []*narrative.Story, evidence map[string]bool) ReadinessDimension {
	dim := ReadinessDimension{Name: DimLeadershipCoherence}

	var leadership []*narrative.Story
	for _, s := range stories {
		for _, g := range s.Groups {
			if sc.rules.IsLeadershipGroup(g) {
				leadership = append(leadership, s)
				break
			}
		}
	}
	if len(leadership) < 2 {
		dim.Score = 0.5
		dim.Interpretation = "insufficient data: fewer than two leadership stories"
		return dim
	}
	for _, s := range leadership {
		evidence[s.ID] = true
	}

	frameConsistency := modalFrameShare(leadership, sc.rules)
	sentimentConsistency := 1 - meanAbsDeviation(leadership)
	themeConsistency := sc.modalThemeShare(leadership)

	dim.Positive = len(leadership)
	dim.Score = narrative.Clamp01((frameConsistency + sentimentConsistency + themeConsistency) / 3)
	dim.Interpretation = fmt.Sprintf("%d leadership stories, frame consistency %.2f", len(leadership), frameConsistency)
	return dim
}

// modalFrameShare is the share of frame-classified stories using the modal
// frame; 0.5 when no story has a usable frame.
func modalFrameShare(stories []*narrative.Story, rs *rules.RuleSet) float64 {
	counts := make(map[narrative.Frame]int)
	total := 0
	for _, s := range stories {
		if f := effectiveFrame(s, rs); f != narrative.FrameUnknown {
			counts[f]++
			total++
		}
	}
	if total == 0 {
		return 0.5
	}
	modal := 0
	for _, c := range counts {
		if c > modal {
			modal = c
		}
	}
	return float64(modal) / float64(total)
}

// meanAbsDeviation of sentiment around its mean, over sentiment-bearing
// stories; 0 when fewer than two carry sentiment.
func meanAbsDeviation(stories []*narrative.Story) float64 {
	mean := narrative.MeanSentiment(stories)
	var sum float64
	n := 0
	for _, s := range stories {
		if !s.HasSentiment {
			continue
		}
		sum += math.Abs(s.Sentiment - mean)
		n++
	}
	if n < 2 {
		return 0
	}
	return sum / float64(n)
}

// modalThemeShare is the share of theme-classified stories mentioning the
// most common emphasis theme; 0.5 when no themes are found.
func (sc *AdoptionReadinessScorer) modalThemeShare(stories []*narrative.Story) float64 {
	counts := make(map[string]int)
	withTheme := 0
	for _, s := range stories {
		themes := sc.rules.ClassifyEmphasis(s.Summary)
		if len(themes) == 0 {
			continue
		}
		withTheme++
		for _, theme := range themes {
			counts[theme]++
		}
	}
	if withTheme == 0 {
		return 0.5
	}
	modal := 0
	for _, c := range counts {
		if c > modal {
			modal = c
		}
	}
	if modal > withTheme {
		modal = withTheme
	}
	return float64(modal) / float64(withTheme)
}

// classifyTrend splits the sentiment-bearing stories into early and late
// halves by timestamp and compares their means. Fewer than four samples
// classify as flat.
func classifyTrend(stories []*narrative.Story) Trend {
	type sample struct {
		at        int64
		sentiment float64
	}
	var samples []sample
	for _, s := range stories {
		if s.HasSentiment {
			samples = append(samples, sample{at: s.Timestamp.UnixNano(), sentiment: s.Sentiment})
		}
	}
	if len(samples) < 4 {
		return TrendFlat
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].at < samples[j].at })

	mid := len(samples) / 2
	var early, late float64
	for _, s := range samples[:mid] {
		early += s.sentiment
	}
	for _, s := range samples[mid:] {
		late += s.sentiment
	}
	early /= float64(mid)
	late /= float64(len(samples) - mid)

	switch {
	case late > early+0.1:
		return TrendPositive
	case late < early-0.1:
		return TrendNegative
	default:
		return TrendFlat
	}
}

// forecastConfidence buckets forecast confidence by evidence volume. A
// plain count heuristic, kept auditable on purpose.
func forecastConfidence(storyCount int) string {
	switch {
	case storyCount >= 100:
		return "high"
	case storyCount >= 50:
		return "medium"
	case storyCount >= 20:
		return "low"
	default:
		return "very_low"
	}
}

func readinessRecommendations(report *ReadinessReport) []string {
	var recs []string
	for _, name := range report.Forecast.CriticalBarriers {
		switch name {
		case DimNarrativeAlignment:
			recs = append(recs, "Groups tell incompatible stories; invest in shared narrative work before scaling")
		case DimCulturalReceptivity:
			recs = append(recs, "Risk-averse culture; start with low-stakes pilots to build comfort")
		case DimTrustFoundation:
			recs = append(recs, "Trust is the binding constraint; leadership transparency comes before any rollout push")
		case DimLearningOrientation:
			recs = append(recs, "Fixed-mindset signals dominate; pair training with visible early wins")
		case DimLeadershipCoherence:
			recs = append(recs, "Leaders contradict each other; align the leadership story first")
		case DimCoordination:
			recs = append(recs, "Groups work in silos; establish a cross-team coordination rhythm")
		}
	}
	if len(recs) == 0 {
		recs = []string{"No dimension is critically low; focus on the weakest dimension to raise the composite"}
	}
	return recs
}
