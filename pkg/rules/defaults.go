package rules

// DefaultRuleSet returns the built-in English vocabulary for AI adoption
// analysis. Organizations with their own idiom load a YAML rule file
// instead; the shapes are identical.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Resistance: map[string]ResistancePattern{
			"passive": {
				Markers:     []string{"waiting to see", "not prioritized", "when we have time", "eventually", "someday"},
				Severity:    "low",
				Description: "Passive resistance, delaying without active opposition",
			},
			"skeptical": {
				Markers:     []string{"not convinced", "needs proof", "where's the evidence", "show me", "prove it"},
				Severity:    "medium",
				Description: "Skeptical resistance, requires evidence before buy-in",
			},
			"active": {
				Markers:     []string{"won't work here", "tried before", "fundamentally flawed", "waste of time", "wrong approach"},
				Severity:    "high",
				Description: "Active resistance, direct opposition",
			},
			"fearful": {
				Markers:     []string{"worried about", "concerned that", "might lose", "afraid", "anxious", "threatened"},
				Severity:    "high",
				Description: "Fearful resistance, anxiety-driven opposition",
			},
		},
		RootCauses: map[string]RootCause{
			"past_failures": {
				Keywords:       []string{"last time", "tried that", "failed", "didn't work", "previous attempt"},
				Interpretation: "Prior initiatives left scar tissue; credibility must be rebuilt before adoption can proceed",
			},
			"threat_perception": {
				Keywords:       []string{"job", "role", "replace", "eliminate", "redundant", "obsolete", "threatened"},
				Interpretation: "People read the initiative as a threat to their jobs or roles",
			},
			"resource_issues": {
				Keywords:       []string{"no time", "budget", "resources", "capacity", "bandwidth", "overloaded"},
				Interpretation: "Teams see the initiative as unfunded extra work on top of full plates",
			},
			"value_misalignment": {
				Keywords:       []string{"values", "our culture", "not us", "doesn't fit", "wrong for", "against what"},
				Interpretation: "The initiative reads as a violation of what the organization stands for",
			},
			"knowledge_gap": {
				Keywords:       []string{"don't understand", "unclear", "confusing", "no idea", "what is"},
				Interpretation: "People lack a working mental model of what is being adopted",
			},
		},
		Trust: MarkerPair{
			Positive: []string{
				"leadership understands", "clear direction", "transparent about",
				"listening to us", "following through", "trust the process",
				"confidence in leadership",
			},
			Negative: []string{
				"not sure why", "no clear plan", "not hearing us",
				"another initiative", "flavor of the month", "hiding information",
				"don't trust",
			},
		},
		Learning: MarkerPair{
			Positive: []string{
				"learning as we go", "experimenting with", "trying different approaches",
				"feedback welcome", "getting better at", "still figuring out",
				"improving over time",
			},
			Negative: []string{
				"not my area", "not trained for this", "beyond my expertise",
				"someone else should", "can't learn", "too old for this",
				"not capable",
			},
		},
		Coordination: MarkerPair{
			Positive: []string{
				"working together", "aligned with", "coordinating across",
				"shared understanding", "consistent approach", "integrated effort",
				"cross-team collaboration",
			},
			Negative: []string{
				"working in silos", "conflicting approaches", "different directions",
				"not coordinated", "fragmented effort", "lack of alignment",
				"isolated teams",
			},
		},
		Innovation: MarkerPair{
			Positive: []string{
				"experiment", "try new", "innovative", "creative",
				"learning", "iterate", "improve", "opportunity",
			},
			Negative: []string{
				"risky", "dangerous", "careful", "cautious",
				"proven", "traditional", "safe", "avoid",
			},
		},
		Agency: MarkerPair{
			Positive: []string{
				"we built", "we created", "we experimented",
				"we tried", "we implemented", "we decided",
			},
			Negative: []string{
				"was introduced", "were told", "management decided",
				"given to us", "deployed on us", "had to",
			},
		},
		Iteration: MarkerPair{
			Positive: []string{"quick", "rapid", "fast", "immediate", "sprint"},
			Negative: []string{"slow", "delayed", "waiting", "approval", "process"},
		},
		Experiment: []string{
			"tried", "experiment", "test", "pilot", "prototype",
			"explore", "trial", "attempt",
		},
		LearningFraming: []string{"learn", "lesson", "insight", "next time", "improve", "adjust"},
		WarningFraming:  []string{"avoid", "never", "don't", "mistake", "careful", "danger"},
		Blocking:        []string{"cancelled", "blocked", "stopped", "prevented", "abandoned", "shelved"},
		Causal:          []string{"because", "therefore", "led to", "caused", "as a result"},
		DomainKeywords: []string{
			"ai", "artificial intelligence", "machine learning", "ml",
			"automation", "bot", "copilot", "assistant", "algorithm",
			"neural network", "deep learning", "llm", "gpt",
			"automated", "intelligent", "smart", "cognitive",
		},
		TechnicalTerms: []string{
			"machine learning", "neural network", "deep learning",
			"algorithm", "model", "training", "inference",
			"natural language processing", "computer vision",
		},
		Emphasis: []EmphasisCategory{
			{Name: "efficiency", Keywords: []string{"efficiency", "productivity", "faster"}},
			{Name: "quality", Keywords: []string{"quality", "better", "improved"}},
			{Name: "cost savings", Keywords: []string{"cost", "saving", "budget"}},
			{Name: "workload impact", Keywords: []string{"workload", "burden", "more work"}},
			{Name: "job security", Keywords: []string{"job", "role", "position"}},
		},
		FrameInference: []FrameRule{
			{Frame: "opportunity", Keywords: []string{"opportunity", "advantage", "growth", "innovation"}},
			{Frame: "threat", Keywords: []string{"threat", "risk", "replace", "worried", "concerned"}},
			{Frame: "tool", Keywords: []string{"tool", "assistant", "copilot", "help"}},
		},
		LeadershipGroups: []string{"leadership", "executive", "senior_management", "c_suite"},
	}
}
