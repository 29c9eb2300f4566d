package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/logging"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/rules"
)

// GapSeverity classifies how badly the official and actual narratives have
// diverged.
type GapSeverity string

const (
	GapMinor       GapSeverity = "minor"
	GapSignificant GapSeverity = "significant"
	GapCritical    GapSeverity = "critical"
)

// FrameGap describes the dominant-frame comparison between the official and
// actual story sets.
type FrameGap struct {
	OfficialFrame narrative.Frame
	ActualFrame   narrative.Frame
	// Alignment is 1 for matching frames, 0.5 for different frames of
	// compatible valence, 0 for opposing frames.
	Alignment   float64
	Conflicting bool
}

// GapReport is the fixed-shape result of a narrative gap analysis. All gap
// values except SentimentGap lie in [0,1]; SentimentGap is a signed
// difference in [-2,2].
type GapReport struct {
	InitiativeID  string
	VocabularyGap float64
	FrameGap      FrameGap
	EmphasisGap   float64
	SentimentGap  float64
	BeliefGap     float64

	Severity      GapSeverity
	SeverityScore float64
	Indicators    []string

	Evidence        []string
	Interpretation  string
	Recommendations []string
}

// NarrativeGapAnalyzer compares an initiative's official narrative against
// the stories employees actually tell.
type NarrativeGapAnalyzer struct {
	port  graphport.Port
	rules *rules.RuleSet
	log   logging.Logger
}

// NewNarrativeGapAnalyzer builds a gap analyzer. A nil rule set uses the
// defaults; a nil logger discards output.
func NewNarrativeGapAnalyzer(port graphport.Port, rs *rules.RuleSet, log logging.Logger) *NarrativeGapAnalyzer {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &NarrativeGapAnalyzer{port: port, rules: rs, log: log.With(logging.Analyzer(NameNarrativeGap))}
}

// Analyze measures the divergence between the initiative's official and
// actual story sets. A missing initiative or empty story sets are not an
// error; the report comes back with zero gaps and an insufficient-data
// interpretation.
func (a *NarrativeGapAnalyzer) Analyze(ctx context.Context, initiativeID string) (*GapReport, error) {
	official, err := initiativeStories(ctx, a.port, initiativeID, graphport.StoryOfficial)
	if err != nil {
		return nil, fmt.Errorf("narrative gap: official stories: %w", err)
	}
	actual, err := initiativeStories(ctx, a.port, initiativeID, graphport.StoryActual)
	if err != nil {
		return nil, fmt.Errorf("narrative gap: actual stories: %w", err)
	}

	if len(official) == 0 && len(actual) == 0 {
		a.log.Warn("no stories for initiative", logging.Initiative(initiativeID))
		return &GapReport{
			InitiativeID:   initiativeID,
			FrameGap:       FrameGap{OfficialFrame: narrative.FrameUnknown, ActualFrame: narrative.FrameUnknown, Alignment: 0.5},
			Severity:       GapMinor,
			Evidence:       []string{},
			Interpretation: "insufficient data: no official or actual stories for this initiative",
		}, nil
	}

	report := &GapReport{
		InitiativeID:  initiativeID,
		VocabularyGap: a.vocabularyGap(official, actual),
		FrameGap:      a.frameGap(official, actual),
		EmphasisGap:   a.emphasisGap(official, actual),
		SentimentGap:  sentimentGap(official, actual),
		BeliefGap:     beliefGap(official, actual),
		Evidence:      append(narrative.StoryIDs(official), narrative.StoryIDs(actual)...),
	}
	a.classifySeverity(report)

	a.log.Info("gap analysis complete",
		logging.Initiative(initiativeID),
		logging.Stories(len(official)+len(actual)),
		logging.Float64("severity_score", report.SeverityScore),
		logging.String("severity", string(report.Severity)))
	return report, nil
}

// vocabularyGap is 1 minus the Jaccard similarity of the concept-term sets.
// Terms come from the concept property plus domain keywords found in the
// summary text.
func (a *NarrativeGapAnalyzer) vocabularyGap(official, actual []*narrative.Story) float64 {
	return narrative.Clamp01(1 - narrative.Jaccard(a.termSet(official), a.termSet(actual)))
}

func (a *NarrativeGapAnalyzer) termSet(stories []*narrative.Story) map[string]bool {
	terms := make(map[string]bool)
	for _, s := range stories {
		for _, c := range s.Concepts {
			terms[c] = true
		}
		for _, kw := range rules.Matches(s.Summary, a.rules.DomainKeywords) {
			terms[kw] = true
		}
	}
	return terms
}

func (a *NarrativeGapAnalyzer) frameGap(official, actual []*narrative.Story) FrameGap {
	fg := FrameGap{
		OfficialFrame: dominantGroupFrame(official, a.rules),
		ActualFrame:   dominantGroupFrame(actual, a.rules),
	}
	switch {
	case fg.OfficialFrame == narrative.FrameUnknown || fg.ActualFrame == narrative.FrameUnknown:
		fg.Alignment = 0.5
	case fg.OfficialFrame == fg.ActualFrame:
		fg.Alignment = 1
	case narrative.OpposingFrames(fg.OfficialFrame, fg.ActualFrame):
		fg.Alignment = 0
		fg.Conflicting = true
	default:
		fg.Alignment = 0.5
	}
	return fg
}

func (a *NarrativeGapAnalyzer) emphasisGap(official, actual []*narrative.Story) float64 {
	return narrative.Clamp01(1 - narrative.Jaccard(a.emphasisSet(official), a.emphasisSet(actual)))
}

func (a *NarrativeGapAnalyzer) emphasisSet(stories []*narrative.Story) map[string]bool {
	themes := make(map[string]bool)
	for _, s := range stories {
		for _, theme := range a.rules.ClassifyEmphasis(s.Summary) {
			themes[theme] = true
		}
	}
	return themes
}

// sentimentGap is mean(actual) minus mean(official). Either side empty of
// sentiment-bearing stories makes the gap 0.
func sentimentGap(official, actual []*narrative.Story) float64 {
	if countSentiment(official) == 0 || countSentiment(actual) == 0 {
		return 0
	}
	return narrative.MeanSentiment(actual) - narrative.MeanSentiment(official)
}

func countSentiment(stories []*narrative.Story) int {
	n := 0
	for _, s := range stories {
		if s.HasSentiment {
			n++
		}
	}
	return n
}

// beliefGap measures divergence between the narrative-function
// distributions of the two sides: half the L1 distance, which lies in
// [0,1]. Either side empty of classified stories makes the gap 0.
func beliefGap(official, actual []*narrative.Story) float64 {
	od, on := functionDistribution(official)
	ad, an := functionDistribution(actual)
	if on == 0 || an == 0 {
		return 0
	}
	functions := []narrative.NarrativeFunction{
		narrative.FunctionVision, narrative.FunctionSuccess,
		narrative.FunctionWarning, narrative.FunctionComplication,
	}
	var dist float64
	for _, fn := range functions {
		dist += math.Abs(od[fn]-ad[fn]) / 2
	}
	return narrative.Clamp01(dist)
}

func functionDistribution(stories []*narrative.Story) (map[narrative.NarrativeFunction]float64, int) {
	counts := make(map[narrative.NarrativeFunction]int)
	total := 0
	for _, s := range stories {
		if s.Function == narrative.FunctionUnknown {
			continue
		}
		counts[s.Function]++
		total++
	}
	dist := make(map[narrative.NarrativeFunction]float64, len(counts))
	if total == 0 {
		return dist, 0
	}
	for fn, c := range counts {
		dist[fn] = float64(c) / float64(total)
	}
	return dist, total
}

// classifySeverity scores the four sub-gaps into indicator buckets and maps
// the combined weight onto the ordinal severity. Critical indicators count
// 1.0, significant 0.5, over the four indicator families.
func (a *NarrativeGapAnalyzer) classifySeverity(r *GapReport) {
	var critical, significant []string

	vocabAlignment := 1 - r.VocabularyGap
	if vocabAlignment < 0.3 {
		critical = append(critical, "completely different vocabulary")
	} else if vocabAlignment < 0.6 {
		significant = append(significant, "limited vocabulary overlap")
	}

	if r.FrameGap.Conflicting {
		critical = append(critical, "opposing narrative frames")
	} else if r.FrameGap.Alignment < 0.4 {
		significant = append(significant, "low frame alignment")
	}

	if abs := math.Abs(r.SentimentGap); abs > 0.8 {
		critical = append(critical, "extreme sentiment divergence")
	} else if abs > 0.5 {
		significant = append(significant, "significant sentiment gap")
	}

	if r.BeliefGap > 0.7 {
		critical = append(critical, "divergent belief systems")
	} else if r.BeliefGap > 0.4 {
		significant = append(significant, "belief systems drifting apart")
	}

	r.Indicators = append(critical, significant...)
	r.SeverityScore = narrative.Clamp01((float64(len(critical)) + 0.5*float64(len(significant))) / 4.0)

	switch {
	case r.SeverityScore >= 0.7:
		r.Severity = GapCritical
		r.Recommendations = []string{
			"Align leadership messaging with employee experience before expanding the rollout",
			"Run a leadership workshop to close the narrative gap",
		}
	case r.SeverityScore >= 0.4:
		r.Severity = GapSignificant
		r.Recommendations = []string{
			"Target communication at the groups whose stories diverge most from the official narrative",
		}
	default:
		r.Severity = GapMinor
		r.Recommendations = []string{
			"Gaps are manageable; keep monitoring them as the initiative progresses",
		}
	}

	r.Interpretation = fmt.Sprintf(
		"overall severity %s: vocabulary gap %.2f, frame alignment %.2f, sentiment gap %+.2f, belief gap %.2f",
		r.Severity, r.VocabularyGap, r.FrameGap.Alignment, r.SentimentGap, r.BeliefGap)
}
