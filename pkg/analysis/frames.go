package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/logging"
	"github.com/kmorrow/storylens/pkg/narrative"
	"github.com/kmorrow/storylens/pkg/rules"
)

// FrameConflict records a pair of groups whose dominant frames carry
// opposing valence. Severity is the evidence-backed weight of the tension:
// the smaller group's story count normalized by the total story count.
type FrameConflict struct {
	GroupA   string
	GroupB   string
	FrameA   narrative.Frame
	FrameB   narrative.Frame
	Severity float64
}

// FrameCompetitionReport maps which interpretive frames dominate where and
// how they collide.
type FrameCompetitionReport struct {
	FramesInUse     map[narrative.Frame]int
	DominantByGroup map[string]narrative.Frame
	Conflicts       []FrameConflict
	CommonGround    []string

	Evidence        []string
	Interpretation  string
	Recommendations []string
}

// UnifiedNarrative is the templated bridging narrative assembled from
// common ground and the least-conflicting frame pair. It is combinatorial
// selection over fixed templates, not text generation.
type UnifiedNarrative struct {
	CoreMessage     string
	VisionNarrative string
	BridgingFrames  []narrative.Frame
	BridgingStories []string
	Acknowledgments map[narrative.Frame]string
	Reframes        map[string]string
	CommonGround    []string
}

// FrameCompetitionAnalyzer identifies which frames dominate by group and
// where opposing frames compete.
type FrameCompetitionAnalyzer struct {
	port  graphport.Port
	rules *rules.RuleSet
	log   logging.Logger
}

func NewFrameCompetitionAnalyzer(port graphport.Port, rs *rules.RuleSet, log logging.Logger) *FrameCompetitionAnalyzer {
	if rs == nil {
		rs = rules.DefaultRuleSet()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FrameCompetitionAnalyzer{port: port, rules: rs, log: log.With(logging.Analyzer(NameFrameCompetition))}
}

// MapCompetingFrames computes the frame landscape over the whole snapshot:
// per-group dominant frames, opposing-valence conflicts, and the concepts
// every group shares.
func (a *FrameCompetitionAnalyzer) MapCompetingFrames(ctx context.Context) (*FrameCompetitionReport, error) {
	stories, err := allStories(ctx, a.port)
	if err != nil {
		return nil, fmt.Errorf("frame competition: %w", err)
	}

	report := &FrameCompetitionReport{
		FramesInUse:     make(map[narrative.Frame]int),
		DominantByGroup: make(map[string]narrative.Frame),
		Evidence:        []string{},
	}
	if len(stories) == 0 {
		report.Interpretation = "insufficient data: no stories to analyze"
		return report, nil
	}

	byGroup := narrative.GroupStories(stories)
	for _, s := range stories {
		frame := effectiveFrame(s, a.rules)
		if frame != narrative.FrameUnknown {
			report.FramesInUse[frame]++
		}
	}
	for group, groupStories := range byGroup {
		report.DominantByGroup[group] = dominantGroupFrame(groupStories, a.rules)
	}

	report.Conflicts = a.findConflicts(byGroup, report.DominantByGroup, len(stories))
	report.CommonGround = commonGround(byGroup)

	conflictGroups := make(map[string]bool)
	for _, c := range report.Conflicts {
		conflictGroups[c.GroupA] = true
		conflictGroups[c.GroupB] = true
	}
	for _, s := range stories {
		if conflictGroups[s.PrimaryGroup()] {
			report.Evidence = append(report.Evidence, s.ID)
		}
	}

	report.Interpretation = fmt.Sprintf(
		"%d frames in use across %d groups, %d opposing-frame conflicts, %d shared concepts",
		len(report.FramesInUse), len(byGroup), len(report.Conflicts), len(report.CommonGround))
	if len(report.Conflicts) > 0 {
		top := report.Conflicts[0]
		report.Recommendations = []string{
			fmt.Sprintf("Bridge the %s/%s divide between %s and %s with a unified narrative", top.FrameA, top.FrameB, top.GroupA, top.GroupB),
			"Anchor messaging on the concepts all groups already share",
		}
	} else {
		report.Recommendations = []string{
			"No opposing frames detected; reinforce the dominant narrative",
		}
	}

	a.log.Info("frame landscape mapped",
		logging.Stories(len(stories)),
		logging.Count(len(report.Conflicts)))
	return report, nil
}

// findConflicts records every unordered group pair whose dominant frames
// oppose each other, sorted by severity descending then group names.
func (a *FrameCompetitionAnalyzer) findConflicts(byGroup map[string][]*narrative.Story, dominant map[string]narrative.Frame, total int) []FrameConflict {
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var conflicts []FrameConflict
	for i, ga := range groups {
		for _, gb := range groups[i+1:] {
			fa, fb := dominant[ga], dominant[gb]
			if !narrative.OpposingFrames(fa, fb) {
				continue
			}
			evidence := len(byGroup[ga])
			if len(byGroup[gb]) < evidence {
				evidence = len(byGroup[gb])
			}
			conflicts = append(conflicts, FrameConflict{
				GroupA:   ga,
				GroupB:   gb,
				FrameA:   fa,
				FrameB:   fb,
				Severity: narrative.Clamp01(float64(evidence) / float64(total)),
			})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Severity != conflicts[j].Severity {
			return conflicts[i].Severity > conflicts[j].Severity
		}
		if conflicts[i].GroupA != conflicts[j].GroupA {
			return conflicts[i].GroupA < conflicts[j].GroupA
		}
		return conflicts[i].GroupB < conflicts[j].GroupB
	})
	return conflicts
}

// commonGround returns the concepts mentioned in every group whose total
// frequency is above the median concept frequency, sorted.
func commonGround(byGroup map[string][]*narrative.Story) []string {
	if len(byGroup) == 0 {
		return nil
	}
	totals := make(map[string]int)
	groupsWith := make(map[string]map[string]bool)
	for group, stories := range byGroup {
		for _, s := range stories {
			for _, c := range s.Concepts {
				totals[c]++
				if groupsWith[c] == nil {
					groupsWith[c] = make(map[string]bool)
				}
				groupsWith[c][group] = true
			}
		}
	}
	if len(totals) == 0 {
		return nil
	}

	freqs := make([]int, 0, len(totals))
	for _, n := range totals {
		freqs = append(freqs, n)
	}
	sort.Ints(freqs)
	median := freqs[len(freqs)/2]

	var shared []string
	for concept, groups := range groupsWith {
		if len(groups) == len(byGroup) && totals[concept] >= median {
			shared = append(shared, concept)
		}
	}
	sort.Strings(shared)
	return shared
}

var frameAcknowledgments = map[narrative.Frame]string{
	narrative.FrameThreat:      "We understand concerns about how this might change roles and responsibilities",
	narrative.FrameOpportunity: "We recognize the potential to enhance our capabilities",
	narrative.FrameTool:        "We see this as something we can learn to use effectively",
	narrative.FramePartner:     "We value working alongside the technology rather than around it",
	narrative.FrameReplacement: "We acknowledge anxiety about automation",
}

var frameReframes = map[string]string{
	"opportunity_vs_threat":  "A transition we navigate together, with both opportunities and challenges",
	"partner_vs_replacement": "Augmenting human capabilities rather than replacing them",
	"tool_vs_replacement":    "Augmenting human capabilities rather than replacing them",
	"opportunity_vs_replacement": "Growth for the organization and the people in it",
	"partner_vs_threat":          "Collaboration on our terms, with concerns heard and addressed",
	"tool_vs_threat":             "A capability under our control, adopted at our pace",
}

// DesignUnifiedNarrative assembles a bridging narrative from the current
// frame landscape: common-ground anchors plus the least-conflicting frame
// pair, with templated acknowledgment and reframing clauses.
func (a *FrameCompetitionAnalyzer) DesignUnifiedNarrative(ctx context.Context, initiativeID string) (*UnifiedNarrative, error) {
	report, err := a.MapCompetingFrames(ctx)
	if err != nil {
		return nil, err
	}

	un := &UnifiedNarrative{
		CommonGround:    report.CommonGround,
		Acknowledgments: make(map[narrative.Frame]string),
		Reframes:        make(map[string]string),
	}

	if len(report.CommonGround) >= 2 {
		un.CoreMessage = fmt.Sprintf("We're united in our commitment to %s while navigating %s",
			report.CommonGround[0], report.CommonGround[1])
		un.VisionNarrative = fmt.Sprintf("Our vision: amplifying %s while staying true to our core values", report.CommonGround[0])
	} else {
		un.CoreMessage = "We're exploring this change together, learning as we go"
		un.VisionNarrative = "Our vision: thoughtful adoption that enhances human capability"
	}

	for _, c := range report.Conflicts {
		for _, f := range []narrative.Frame{c.FrameA, c.FrameB} {
			if _, ok := un.Acknowledgments[f]; !ok {
				if ack, ok := frameAcknowledgments[f]; ok {
					un.Acknowledgments[f] = ack
				} else {
					un.Acknowledgments[f] = fmt.Sprintf("We acknowledge the %s perspective", f)
				}
			}
		}
		key := reframeKey(c.FrameA, c.FrameB)
		if reframe, ok := frameReframes[key]; ok {
			un.Reframes[key] = reframe
		} else {
			un.Reframes[key] = fmt.Sprintf("Balance between %s and %s perspectives", c.FrameA, c.FrameB)
		}
	}

	// The least-severe conflict is the easiest bridge to build.
	if n := len(report.Conflicts); n > 0 {
		last := report.Conflicts[n-1]
		un.BridgingFrames = []narrative.Frame{last.FrameA, last.FrameB}
	}

	un.BridgingStories, err = a.bridgingStories(ctx, report.CommonGround)
	if err != nil {
		return nil, err
	}

	a.log.Info("unified narrative designed",
		logging.Initiative(initiativeID),
		logging.Count(len(un.Reframes)))
	return un, nil
}

// bridgingStories finds stories touching at least two common-ground
// concepts, capped at five.
func (a *FrameCompetitionAnalyzer) bridgingStories(ctx context.Context, common []string) ([]string, error) {
	if len(common) == 0 {
		return nil, nil
	}
	stories, err := allStories(ctx, a.port)
	if err != nil {
		return nil, err
	}
	shared := make(map[string]bool, len(common))
	for _, c := range common {
		shared[c] = true
	}
	var ids []string
	for _, s := range stories {
		hits := 0
		for _, c := range s.Concepts {
			if shared[c] {
				hits++
			}
		}
		if hits >= 2 {
			ids = append(ids, s.ID)
			if len(ids) == 5 {
				break
			}
		}
	}
	return ids, nil
}

func reframeKey(a, b narrative.Frame) string {
	// Positive-valence frame first for a stable key.
	if narrative.FrameValence(a) == narrative.ValenceNegative {
		a, b = b, a
	}
	return strings.ToLower(string(a) + "_vs_" + string(b))
}

// effectiveFrame is the story's frame property, or the rule-inferred frame
// when the property is missing.
func effectiveFrame(s *narrative.Story, rs *rules.RuleSet) narrative.Frame {
	if s.Frame != narrative.FrameUnknown {
		return s.Frame
	}
	if inferred := rs.InferFrame(s.Summary, s.Sentiment, s.HasSentiment); inferred != "" {
		return narrative.Frame(inferred)
	}
	return narrative.FrameUnknown
}

// dominantGroupFrame is the modal effective frame over a story set.
func dominantGroupFrame(stories []*narrative.Story, rs *rules.RuleSet) narrative.Frame {
	counts := make(map[narrative.Frame]int)
	for _, s := range stories {
		if f := effectiveFrame(s, rs); f != narrative.FrameUnknown {
			counts[f]++
		}
	}
	return narrative.DominantFrame(counts)
}
