// Package graphport defines the read-only boundary between the analysis
// engine and whatever graph store holds the narrative data. Analyzers only
// ever see this interface; swapping the backing store never touches them.
package graphport

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named initiative does not exist in the
// snapshot.
var ErrNotFound = errors.New("graphport: not found")

// Record is a flat string-keyed property map for a single story node.
// Decoding records into domain types is the caller's concern; see
// narrative.StoryFromRecord for the missing-property policy.
type Record = map[string]any

// StoryKind selects which of an initiative's two disjoint story sets a
// query returns.
type StoryKind string

const (
	// StoryOfficial selects leadership messaging about the initiative.
	StoryOfficial StoryKind = "official"
	// StoryActual selects employee-told stories about the initiative.
	StoryActual StoryKind = "actual"
)

// Reference is a citation edge between two stories, annotated with the
// primary teller group on each side.
type Reference struct {
	FromStory string
	ToStory   string
	FromGroup string
	ToGroup   string
}

// InitiativeInfo is the initiative node itself, without its stories.
type InitiativeInfo struct {
	ID     string
	Name   string
	Status string
}

// Port is the fixed query vocabulary the engine needs from a graph store.
// Implementations must return results in a deterministic order for the
// same snapshot, and must treat the snapshot as immutable for the duration
// of an analysis run.
type Port interface {
	// AllStories returns every story record in the snapshot.
	AllStories(ctx context.Context) ([]Record, error)

	// AllGroups returns every organizational group name, sorted.
	AllGroups(ctx context.Context) ([]string, error)

	// StoriesInGroup returns the stories told by members of the group.
	StoriesInGroup(ctx context.Context, group string) ([]Record, error)

	// StoriesBySentiment returns stories whose sentiment lies in
	// [min, max]. Stories without a sentiment property never match.
	StoriesBySentiment(ctx context.Context, min, max float64) ([]Record, error)

	// StoriesByFrame returns stories carrying the given agency frame.
	StoriesByFrame(ctx context.Context, frame string) ([]Record, error)

	// CrossGroupReferences returns citation edges whose endpoints belong
	// to different primary groups.
	CrossGroupReferences(ctx context.Context) ([]Reference, error)

	// Initiative looks up an initiative node by ID.
	Initiative(ctx context.Context, id string) (InitiativeInfo, error)

	// InitiativeStories returns one of the initiative's story sets.
	InitiativeStories(ctx context.Context, id string, kind StoryKind) ([]Record, error)
}
