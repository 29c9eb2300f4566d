package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/logging"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/rules"
)

// hotspotThreshold is the resistance level above which a group is flagged.
const hotspotThreshold = 0.6

// maxHotspots caps the hotspot list for presentation.
const maxHotspots = 5

// PatternMatch records one resistance pattern exhibited by a group.
type PatternMatch struct {
	Name      string
	Severity  narrative.Severity
	Frequency int
	Examples  []string
}

// RootCauseScore is one ranked explanation for a group's resistance.
// Strength equals EvidenceCount unless recency weighting is enabled.
type RootCauseScore struct {
	Name           string
	EvidenceCount  int
	Strength       float64
	Evidence       []string
	Interpretation string
}

// GroupResistance is the per-group resistance picture.
type GroupResistance struct {
	Group           string
	Level           float64
	ResistanceCount int
	SupportCount    int
	Patterns        []PatternMatch
	RootCauses      []RootCauseScore
	PrimaryCause    string
}

// Hotspot is a group whose resistance level crossed the threshold.
type Hotspot struct {
	Group        string
	Level        float64
	PrimaryCause string
}

// ResistanceReport maps the resistance landscape across all groups.
type ResistanceReport struct {
	ByGroup        map[string]GroupResistance
	Hotspots       []Hotspot
	CommonPatterns []PatternMatch

	Evidence        []string
	Interpretation  string
	Recommendations []string
}

// StoryInfluence ranks a cautionary tale by how often other groups cite it.
type StoryInfluence struct {
	StoryID  string
	Group    string
	InDegree int
}

// SpreadReport describes narrative contagion between groups. It is a
// reference-graph proxy, not a causal claim.
type SpreadReport struct {
	References         []graphport.Reference
	InfluentialStories []StoryInfluence
	Velocity           float64
	Spreading          bool
	Interpretation     string
}

// ResistanceMapper classifies resistance patterns per group and infers
// their root causes.
type ResistanceMapper struct {
	port  graphport.Port
	rules *rules.RuleSet
	log   logging.Logger

	// Recency weighting is off by default; evidence strength is a plain
	// count unless WithRecencyWeighting is applied.
	halfLife  time.Duration
	reference time.Time
}

// MapperOption configures a ResistanceMapper.
type MapperOption func(*ResistanceMapper)

// WithRecencyWeighting makes root-cause evidence decay with age: a story's
// weight is 0.5^(age/halfLife) measured against the reference time. The
// reference is explicit so results stay reproducible.
func WithRecencyWeighting(halfLife time.Duration, reference time.Time) MapperOption {
	return func(m *ResistanceMapper) {
		m.halfLife = halfLife
		m.reference = reference
	}
}

func NewResistanceMapper(port graphport.Port, rs *rules.RuleSet, log logging.Logger, opts ...MapperOption) *ResistanceMapper {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	m := &ResistanceMapper{port: port, rules: rs, log: log.With(logging.Analyzer(NameResistanceMapper))}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MapResistanceLandscape computes per-group resistance levels, the patterns
// behind them, ranked root causes, and the hotspot list.
func (m *ResistanceMapper) MapResistanceLandscape(ctx context.Context) (*ResistanceReport, error) {
	stories, err := allStories(ctx, m.port)
	if err != nil {
		return nil, fmt.Errorf("resistance mapper: %w", err)
	}

	report := &ResistanceReport{
		ByGroup:  make(map[string]GroupResistance),
		Evidence: []string{},
	}
	if len(stories) == 0 {
		report.Interpretation = "insufficient data: no stories to analyze"
		return report, nil
	}

	byGroup := narrative.GroupStories(stories)
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	patternTotals := make(map[string]*PatternMatch)
	evidence := make(map[string]bool)

	for _, group := range groups {
		gr := m.analyzeGroup(group, byGroup[group])
		report.ByGroup[group] = gr
		for _, p := range gr.Patterns {
			agg, ok := patternTotals[p.Name]
			if !ok {
				agg = &PatternMatch{Name: p.Name, Severity: p.Severity}
				patternTotals[p.Name] = agg
			}
			agg.Frequency += p.Frequency
			for _, id := range p.Examples {
				evidence[id] = true
			}
		}
		if gr.Level > hotspotThreshold {
			report.Hotspots = append(report.Hotspots, Hotspot{
				Group:        group,
				Level:        gr.Level,
				PrimaryCause: gr.PrimaryCause,
			})
		}
	}

	sort.Slice(report.Hotspots, func(i, j int) bool {
		if report.Hotspots[i].Level != report.Hotspots[j].Level {
			return report.Hotspots[i].Level > report.Hotspots[j].Level
		}
		return report.Hotspots[i].Group < report.Hotspots[j].Group
	})
	if len(report.Hotspots) > maxHotspots {
		report.Hotspots = report.Hotspots[:maxHotspots]
	}

	for _, p := range patternTotals {
		report.CommonPatterns = append(report.CommonPatterns, *p)
	}
	sort.Slice(report.CommonPatterns, func(i, j int) bool {
		if report.CommonPatterns[i].Frequency != report.CommonPatterns[j].Frequency {
			return report.CommonPatterns[i].Frequency > report.CommonPatterns[j].Frequency
		}
		return report.CommonPatterns[i].Name < report.CommonPatterns[j].Name
	})

	for id := range evidence {
		report.Evidence = append(report.Evidence, id)
	}
	sort.Strings(report.Evidence)

	report.Interpretation = fmt.Sprintf("%d of %d groups are resistance hotspots", len(report.Hotspots), len(groups))
	report.Recommendations = m.landscapeRecommendations(report)

	m.log.Info("resistance landscape mapped",
		logging.Stories(len(stories)),
		logging.Count(len(report.Hotspots)))
	return report, nil
}

// analyzeGroup classifies one group: level from resistance vs support
// indicators, pattern matches, ranked root causes.
func (m *ResistanceMapper) analyzeGroup(group string, stories []*narrative.Story) GroupResistance {
	gr := GroupResistance{Group: group, PrimaryCause: "unknown"}

	for _, s := range stories {
		switch {
		case m.isResistanceStory(s):
			gr.ResistanceCount++
		case (s.HasSentiment && s.Sentiment > 0.2) || s.Experimentation:
			gr.SupportCount++
		}
	}
	gr.Level = narrative.Ratio(gr.ResistanceCount, gr.SupportCount)

	gr.Patterns = m.matchPatterns(stories)
	gr.RootCauses = m.rankRootCauses(stories)
	if len(gr.RootCauses) > 0 && gr.RootCauses[0].EvidenceCount > 0 {
		gr.PrimaryCause = gr.RootCauses[0].Name
	}
	return gr
}

func (m *ResistanceMapper) isResistanceStory(s *narrative.Story) bool {
	if s.HasSentiment && s.Sentiment < -0.2 {
		return true
	}
	if s.Function == narrative.FunctionWarning {
		return true
	}
	for _, pattern := range m.rules.Resistance {
		if rules.MatchAny(s.Summary, pattern.Markers) {
			return true
		}
	}
	return false
}

// matchPatterns finds every catalog pattern at least one story exhibits,
// sorted by severity descending then name.
func (m *ResistanceMapper) matchPatterns(stories []*narrative.Story) []PatternMatch {
	names := make([]string, 0, len(m.rules.Resistance))
	for name := range m.rules.Resistance {
		names = append(names, name)
	}
	sort.Strings(names)

	var matches []PatternMatch
	for _, name := range names {
		pattern := m.rules.Resistance[name]
		match := PatternMatch{Name: name, Severity: narrative.ParseSeverity(pattern.Severity)}
		for _, s := range stories {
			if rules.MatchAny(s.Summary, pattern.Markers) {
				match.Frequency++
				if len(match.Examples) < 3 {
					match.Examples = append(match.Examples, s.ID)
				}
			}
		}
		if match.Frequency > 0 {
			matches = append(matches, match)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Severity != matches[j].Severity {
			return matches[i].Severity > matches[j].Severity
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// rankRootCauses scores each candidate cause by evidence strength,
// descending, with the cause name as a deterministic tie-break.
func (m *ResistanceMapper) rankRootCauses(stories []*narrative.Story) []RootCauseScore {
	names := make([]string, 0, len(m.rules.RootCauses))
	for name := range m.rules.RootCauses {
		names = append(names, name)
	}
	sort.Strings(names)

	causes := make([]RootCauseScore, 0, len(names))
	for _, name := range names {
		cause := m.rules.RootCauses[name]
		score := RootCauseScore{Name: name, Interpretation: cause.Interpretation}
		for _, s := range stories {
			if !rules.MatchAny(s.Summary, cause.Keywords) {
				continue
			}
			score.EvidenceCount++
			score.Strength += m.evidenceWeight(s)
			score.Evidence = append(score.Evidence, s.ID)
		}
		causes = append(causes, score)
	}
	sort.SliceStable(causes, func(i, j int) bool {
		if causes[i].Strength != causes[j].Strength {
			return causes[i].Strength > causes[j].Strength
		}
		return causes[i].Name < causes[j].Name
	})
	return causes
}

// evidenceWeight is 1 per story by default; with recency weighting enabled
// it decays by half every halfLife.
func (m *ResistanceMapper) evidenceWeight(s *narrative.Story) float64 {
	if m.halfLife <= 0 || s.Timestamp.IsZero() {
		return 1
	}
	age := m.reference.Sub(s.Timestamp)
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(m.halfLife))
}

func (m *ResistanceMapper) landscapeRecommendations(report *ResistanceReport) []string {
	if len(report.Hotspots) == 0 {
		return []string{"No resistance hotspots; continue monitoring group sentiment"}
	}
	var recs []string
	top := report.Hotspots[0]
	switch top.PrimaryCause {
	case "past_failures":
		recs = append(recs, fmt.Sprintf("Rebuild credibility with %s: name what went wrong before and what is different now", top.Group))
	case "threat_perception":
		recs = append(recs, fmt.Sprintf("Address job-security fears in %s directly; vague reassurance reads as confirmation", top.Group))
	case "resource_issues":
		recs = append(recs, fmt.Sprintf("Fund the change for %s explicitly; carve out time instead of adding to full plates", top.Group))
	case "value_misalignment":
		recs = append(recs, fmt.Sprintf("Connect the initiative to what %s already values before asking for behavior change", top.Group))
	case "knowledge_gap":
		recs = append(recs, fmt.Sprintf("Start with education in %s; resistance there is confusion, not opposition", top.Group))
	default:
		recs = append(recs, fmt.Sprintf("Investigate resistance in %s; no single root cause stands out", top.Group))
	}
	if len(report.Hotspots) > 1 {
		recs = append(recs, fmt.Sprintf("%d further hotspot groups need targeted follow-up", len(report.Hotspots)-1))
	}
	return recs
}

// AnalyzeResistanceSpread builds the directed cross-group reference graph
// restricted to negative or warning citers and ranks the most-cited
// cautionary tales by in-degree.
func (m *ResistanceMapper) AnalyzeResistanceSpread(ctx context.Context) (*SpreadReport, error) {
	refs, err := m.port.CrossGroupReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("resistance spread: %w", err)
	}
	stories, err := allStories(ctx, m.port)
	if err != nil {
		return nil, fmt.Errorf("resistance spread: %w", err)
	}

	byID := make(map[string]*narrative.Story, len(stories))
	for _, s := range stories {
		byID[s.ID] = s
	}

	report := &SpreadReport{}
	inDegree := make(map[string]int)
	for _, ref := range refs {
		citing, ok := byID[ref.FromStory]
		if !ok {
			continue
		}
		negative := (citing.HasSentiment && citing.Sentiment < -0.2) ||
			citing.Function == narrative.FunctionWarning
		if !negative {
			continue
		}
		report.References = append(report.References, ref)
		inDegree[ref.ToStory]++
	}

	for id, deg := range inDegree {
		influence := StoryInfluence{StoryID: id, InDegree: deg}
		if s, ok := byID[id]; ok {
			influence.Group = s.PrimaryGroup()
		}
		report.InfluentialStories = append(report.InfluentialStories, influence)
	}
	sort.Slice(report.InfluentialStories, func(i, j int) bool {
		if report.InfluentialStories[i].InDegree != report.InfluentialStories[j].InDegree {
			return report.InfluentialStories[i].InDegree > report.InfluentialStories[j].InDegree
		}
		return report.InfluentialStories[i].StoryID < report.InfluentialStories[j].StoryID
	})
	if len(report.InfluentialStories) > maxHotspots {
		report.InfluentialStories = report.InfluentialStories[:maxHotspots]
	}

	report.Velocity = math.Min(float64(len(report.References))/10.0, 1.0)
	report.Spreading = len(report.References) > 5 || report.Velocity > 0.5
	if report.Spreading {
		report.Interpretation = fmt.Sprintf("resistance narratives are spreading: %d negative cross-group citations", len(report.References))
	} else {
		report.Interpretation = fmt.Sprintf("resistance narratives are contained: %d negative cross-group citations", len(report.References))
	}

	m.log.Info("resistance spread analyzed",
		logging.Count(len(report.References)),
		logging.Bool("spreading", report.Spreading))
	return report, nil
}
