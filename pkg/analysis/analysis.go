// Package analysis implements the five narrative analyzers. Each analyzer
// reads a snapshot through graphport.Port, scores it against a rules.RuleSet,
// and returns a fixed-shape typed result. Analyzers hold no state between
// calls; running one twice against the same snapshot yields identical output.
package analysis

import (
	"context"
	"errors"

	"github.com/kmorrow/storylens/pkg/graphport"
	"github.com/kmorrow/storylens/pkg/narrative"
)

// Analyzer names used in logs, metrics, and orchestrator report sections.
const (
	NameNarrativeGap     = "narrative_gap"
	NameFrameCompetition = "frame_competition"
	NameCulturalSignal   = "cultural_signal"
	NameResistanceMapper = "resistance_mapper"
	NameReadinessScorer  = "readiness_scorer"
)

func allStories(ctx context.Context, port graphport.Port) ([]*narrative.Story, error) {
	recs, err := port.AllStories(ctx)
	if err != nil {
		return nil, err
	}
	return narrative.StoriesFromRecords(recs), nil
}

// initiativeStories fetches one of an initiative's story sets. A missing
// initiative is not an error at this layer; it returns an empty set so the
// caller can report insufficient data.
func initiativeStories(ctx context.Context, port graphport.Port, id string, kind graphport.StoryKind) ([]*narrative.Story, error) {
	recs, err := port.InitiativeStories(ctx, id, kind)
	if err != nil {
		if errors.Is(err, graphport.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return narrative.StoriesFromRecords(recs), nil
}
