// Package rules holds the data-driven marker vocabulary the analyzers score
// against. Every classification in the engine (resistance patterns, root
// causes, culture markers, readiness signals, frame inference) is driven by
// a RuleSet, so the vocabulary can be tuned per organization without
// touching analyzer code.
package rules

import "strings"

// ResistancePattern is one named resistance style with the phrases that
// mark it and the severity it carries when detected.
type ResistancePattern struct {
	Markers     []string `yaml:"markers" validate:"required,min=1,dive,required"`
	Severity    string   `yaml:"severity" validate:"required,oneof=low medium high critical"`
	Description string   `yaml:"description"`
}

// RootCause is one candidate explanation for resistance, with the keywords
// that count as evidence for it and the interpretation reported when it
// ranks first.
type RootCause struct {
	Keywords       []string `yaml:"keywords" validate:"required,min=1,dive,required"`
	Interpretation string   `yaml:"interpretation"`
}

// MarkerPair is a positive/negative phrase vocabulary for a single
// ratio-style dimension: trust, learning orientation, coordination,
// innovation appetite, agency, iteration speed.
type MarkerPair struct {
	Positive []string `yaml:"positive" validate:"required,min=1,dive,required"`
	Negative []string `yaml:"negative" validate:"required,min=1,dive,required"`
}

// EmphasisCategory is a named theme with the keywords that place a story
// under it. Categories are evaluated in declaration order.
type EmphasisCategory struct {
	Name     string   `yaml:"name" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
}

// FrameRule infers an agency frame from summary text when the frame
// property is missing. Rules are evaluated in declaration order; the first
// match wins.
type FrameRule struct {
	Frame    string   `yaml:"frame" validate:"required,oneof=opportunity threat tool partner replacement"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
}

// RuleSet is the complete marker vocabulary for one analysis run.
type RuleSet struct {
	// Resistance styles keyed by pattern name (passive, skeptical, ...).
	Resistance map[string]ResistancePattern `yaml:"resistance_patterns" validate:"required,min=1,dive"`

	// Root causes keyed by cause name (past_failures, threat_perception, ...).
	RootCauses map[string]RootCause `yaml:"root_causes" validate:"required,min=1,dive"`

	// Ratio-style signal vocabularies.
	Trust        MarkerPair `yaml:"trust_signals"`
	Learning     MarkerPair `yaml:"learning_signals"`
	Coordination MarkerPair `yaml:"coordination_signals"`
	Innovation   MarkerPair `yaml:"innovation_signals"`
	Agency       MarkerPair `yaml:"agency_markers"`
	Iteration    MarkerPair `yaml:"iteration_markers"`

	// Single-sided keyword lists.
	Experiment      []string `yaml:"experiment_keywords" validate:"required,min=1"`
	LearningFraming []string `yaml:"learning_framing_keywords" validate:"required,min=1"`
	WarningFraming  []string `yaml:"warning_framing_keywords" validate:"required,min=1"`
	Blocking        []string `yaml:"blocking_keywords" validate:"required,min=1"`
	Causal          []string `yaml:"causal_keywords"`

	// Vocabulary comparison material for the gap analyzer.
	DomainKeywords []string `yaml:"domain_keywords" validate:"required,min=1"`
	TechnicalTerms []string `yaml:"technical_terms" validate:"required,min=1"`

	// Story theme classification, ordered.
	Emphasis []EmphasisCategory `yaml:"emphasis_categories" validate:"required,min=1,dive"`

	// Frame inference fallback, ordered.
	FrameInference []FrameRule `yaml:"frame_inference" validate:"dive"`

	// Group-name substrings that identify leadership tellers.
	LeadershipGroups []string `yaml:"leadership_groups" validate:"required,min=1"`
}

// MatchAny reports whether the text contains any of the markers. Matching
// is case-insensitive substring containment over the whole text.
func MatchAny(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Matches returns every marker the text contains, preserving marker order.
func Matches(text string, markers []string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			hits = append(hits, m)
		}
	}
	return hits
}

// Count is a convenience over Matches for score arithmetic.
func Count(text string, markers []string) int {
	return len(Matches(text, markers))
}

// IsLeadershipGroup reports whether a group name identifies leadership.
func (rs *RuleSet) IsLeadershipGroup(group string) bool {
	lower := strings.ToLower(group)
	for _, lg := range rs.LeadershipGroups {
		if strings.Contains(lower, lg) {
			return true
		}
	}
	return false
}

// InferFrame applies the ordered frame inference rules to summary text,
// falling back to sentiment polarity. It returns the empty string when
// nothing applies.
func (rs *RuleSet) InferFrame(summary string, sentiment float64, hasSentiment bool) string {
	for _, rule := range rs.FrameInference {
		if MatchAny(summary, rule.Keywords) {
			return rule.Frame
		}
	}
	if hasSentiment {
		if sentiment > 0.5 {
			return "opportunity"
		}
		if sentiment < -0.5 {
			return "threat"
		}
	}
	return ""
}

// ClassifyEmphasis returns the names of every emphasis category the text
// falls under, in category order.
func (rs *RuleSet) ClassifyEmphasis(text string) []string {
	var themes []string
	for _, cat := range rs.Emphasis {
		if MatchAny(text, cat.Keywords) {
			themes = append(themes, cat.Name)
		}
	}
	return themes
}
