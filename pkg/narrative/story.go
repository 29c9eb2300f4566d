package narrative

import (
	"sort"
	"time"
)

// Sophistication is the depth of understanding a story displays about the
// change initiative it describes.
type Sophistication string

const (
	SophisticationBasic        Sophistication = "basic"
	SophisticationIntermediate Sophistication = "intermediate"
	SophisticationAdvanced     Sophistication = "advanced"
	SophisticationExpert       Sophistication = "expert"
)

// NarrativeFunction is the role a story plays in the organization's
// narrative landscape.
type NarrativeFunction string

const (
	FunctionVision       NarrativeFunction = "vision"
	FunctionSuccess      NarrativeFunction = "success"
	FunctionWarning      NarrativeFunction = "warning"
	FunctionComplication NarrativeFunction = "complication"
	// FunctionUnknown marks stories that did not carry a function property.
	// They still count toward totals everywhere a function is not required.
	FunctionUnknown NarrativeFunction = "unknown"
)

// Story is an immutable organizational narrative as read from the graph
// store. The engine never creates or mutates stories.
type Story struct {
	ID                string
	Summary           string
	Groups            []string
	Sentiment         float64 // in [-1, 1]
	HasSentiment      bool    // false when the property was missing
	Sophistication    Sophistication
	Frame             Frame
	Function          NarrativeFunction
	Concepts          []string
	Experimentation   bool
	Timestamp         time.Time
}

// PrimaryGroup returns the first group the teller belongs to, or "unknown"
// for group-less stories.
func (s *Story) PrimaryGroup() string {
	if len(s.Groups) == 0 {
		return "unknown"
	}
	return s.Groups[0]
}

// InGroup reports whether the story was told by a member of the group.
func (s *Story) InGroup(group string) bool {
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// ConceptSet returns the story's mentioned concepts as a set.
func (s *Story) ConceptSet() map[string]bool {
	set := make(map[string]bool, len(s.Concepts))
	for _, c := range s.Concepts {
		set[c] = true
	}
	return set
}

// Group is a named organizational unit together with the stories its
// members tell. The story list is derived from the membership relation at
// snapshot time, never stored on the group itself.
type Group struct {
	Name    string
	Stories []*Story
}

// Initiative is a change initiative with its two disjoint story sets.
type Initiative struct {
	ID       string
	Name     string
	Status   string
	Official []*Story // leadership messaging
	Actual   []*Story // employee-told
}

// SortStories orders stories by ID so that every traversal of the same
// snapshot is deterministic.
func SortStories(stories []*Story) {
	sort.Slice(stories, func(i, j int) bool { return stories[i].ID < stories[j].ID })
}

// StoryIDs extracts the IDs of the given stories, preserving order.
func StoryIDs(stories []*Story) []string {
	ids := make([]string, 0, len(stories))
	for _, s := range stories {
		ids = append(ids, s.ID)
	}
	return ids
}

// GroupStories partitions stories by primary teller group.
func GroupStories(stories []*Story) map[string][]*Story {
	byGroup := make(map[string][]*Story)
	for _, s := range stories {
		byGroup[s.PrimaryGroup()] = append(byGroup[s.PrimaryGroup()], s)
	}
	return byGroup
}

// MeanSentiment averages the sentiment of stories that carry one. Stories
// without a sentiment property are skipped; an empty input yields 0, the
// documented default for gap-style calculations.
func MeanSentiment(stories []*Story) float64 {
	sum, n := 0.0, 0
	for _, s := range stories {
		if !s.HasSentiment {
			continue
		}
		sum += s.Sentiment
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
