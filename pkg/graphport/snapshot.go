package graphport

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Snapshot is the on-disk form of a narrative dataset. It exists so that
// analyses can run against a checked-in fixture or an export without a
// live graph store behind the port.
type Snapshot struct {
	Stories     []SnapshotStory      `yaml:"stories"`
	Initiatives []SnapshotInitiative `yaml:"initiatives"`
	References  []SnapshotReference  `yaml:"references"`
}

// SnapshotStory mirrors the story node's property map. Pointer fields
// distinguish an absent property from a zero value; absence flows through
// decoding as the neutral default.
type SnapshotStory struct {
	ID              string   `yaml:"id"`
	Summary         string   `yaml:"summary"`
	Groups          []string `yaml:"groups"`
	Sentiment       *float64 `yaml:"sentiment"`
	Sophistication  string   `yaml:"sophistication"`
	AgencyFrame     string   `yaml:"agency_frame"`
	Function        string   `yaml:"narrative_function"`
	Concepts        []string `yaml:"concepts_mentioned"`
	Experimentation bool     `yaml:"experimentation_indicator"`
	Timestamp       string   `yaml:"timestamp"`
}

// SnapshotInitiative carries an initiative node and its two story ID sets.
type SnapshotInitiative struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Status   string   `yaml:"status"`
	Official []string `yaml:"official_story_ids"`
	Actual   []string `yaml:"actual_story_ids"`
}

// SnapshotReference is a story-to-story citation edge.
type SnapshotReference struct {
	FromStory string `yaml:"from_story"`
	ToStory   string `yaml:"to_story"`
}

// LoadSnapshot reads a YAML snapshot file into a Memory port.
func LoadSnapshot(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// ReadSnapshot decodes a YAML snapshot from a reader into a Memory port.
func ReadSnapshot(r io.Reader) (*Memory, error) {
	var snap Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Port(), nil
}

// Port materializes the snapshot as an in-memory Port.
func (s *Snapshot) Port() *Memory {
	m := NewMemory()
	for _, st := range s.Stories {
		rec := Record{
			"id":      st.ID,
			"summary": st.Summary,
		}
		if len(st.Groups) > 0 {
			rec["groups"] = st.Groups
		}
		if st.Sentiment != nil {
			rec["sentiment"] = *st.Sentiment
		}
		if st.Sophistication != "" {
			rec["sophistication"] = st.Sophistication
		}
		if st.AgencyFrame != "" {
			rec["agency_frame"] = st.AgencyFrame
		}
		if st.Function != "" {
			rec["narrative_function"] = st.Function
		}
		if len(st.Concepts) > 0 {
			rec["concepts_mentioned"] = st.Concepts
		}
		if st.Experimentation {
			rec["experimentation_indicator"] = true
		}
		if st.Timestamp != "" {
			rec["timestamp"] = st.Timestamp
		}
		m.AddStory(rec)
	}
	for _, ini := range s.Initiatives {
		m.AddInitiative(InitiativeInfo{
			ID:     ini.ID,
			Name:   ini.Name,
			Status: ini.Status,
		}, ini.Official, ini.Actual)
	}
	for _, ref := range s.References {
		m.AddReference(ref.FromStory, ref.ToStory)
	}
	return m
}
