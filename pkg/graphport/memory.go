package graphport

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Port backed by a loaded snapshot. It is safe for
// concurrent readers, which is how the orchestrator drives it: five
// analyzers querying the same snapshot in parallel.
type Memory struct {
	mu          sync.RWMutex
	stories     []Record
	byID        map[string]Record
	initiatives map[string]*memInitiative
	refs        []Reference
}

type memInitiative struct {
	info     InitiativeInfo
	official []string
	actual   []string
}

// NewMemory returns an empty in-memory snapshot.
func NewMemory() *Memory {
	return &Memory{
		byID:        make(map[string]Record),
		initiatives: make(map[string]*memInitiative),
	}
}

// AddStory inserts a story record, minting an ID when the record carries
// none. It returns the story's ID.
func (m *Memory) AddStory(rec Record) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, _ := rec["id"].(string)
	if id == "" {
		id = uuid.NewString()
		rec["id"] = id
	}
	if _, exists := m.byID[id]; !exists {
		m.stories = append(m.stories, rec)
	} else {
		for i, s := range m.stories {
			if s["id"] == id {
				m.stories[i] = rec
				break
			}
		}
	}
	m.byID[id] = rec
	sort.Slice(m.stories, func(i, j int) bool {
		a, _ := m.stories[i]["id"].(string)
		b, _ := m.stories[j]["id"].(string)
		return a < b
	})
	return id
}

// AddInitiative registers an initiative node with its two story ID sets.
func (m *Memory) AddInitiative(info InitiativeInfo, official, actual []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initiatives[info.ID] = &memInitiative{
		info:     info,
		official: append([]string(nil), official...),
		actual:   append([]string(nil), actual...),
	}
}

// AddReference registers a citation edge between two stories. Group
// annotations are derived from the stories' primary groups at query time.
func (m *Memory) AddReference(fromStory, toStory string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs = append(m.refs, Reference{FromStory: fromStory, ToStory: toStory})
}

func (m *Memory) AllStories(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Record(nil), m.stories...), nil
}

func (m *Memory) AllGroups(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	for _, rec := range m.stories {
		for _, g := range recordGroups(rec) {
			seen[g] = true
		}
	}
	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups, nil
}

func (m *Memory) StoriesInGroup(ctx context.Context, group string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, rec := range m.stories {
		for _, g := range recordGroups(rec) {
			if g == group {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) StoriesBySentiment(ctx context.Context, min, max float64) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, rec := range m.stories {
		v, ok := recordFloat(rec, "sentiment")
		if !ok {
			continue
		}
		if v >= min && v <= max {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) StoriesByFrame(ctx context.Context, frame string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, rec := range m.stories {
		if f, _ := rec["agency_frame"].(string); f == frame {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) CrossGroupReferences(ctx context.Context) ([]Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Reference
	for _, ref := range m.refs {
		from, okFrom := m.byID[ref.FromStory]
		to, okTo := m.byID[ref.ToStory]
		if !okFrom || !okTo {
			continue
		}
		fg, tg := primaryGroup(from), primaryGroup(to)
		if fg == tg {
			continue
		}
		out = append(out, Reference{
			FromStory: ref.FromStory,
			ToStory:   ref.ToStory,
			FromGroup: fg,
			ToGroup:   tg,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FromStory != out[j].FromStory {
			return out[i].FromStory < out[j].FromStory
		}
		return out[i].ToStory < out[j].ToStory
	})
	return out, nil
}

func (m *Memory) Initiative(ctx context.Context, id string) (InitiativeInfo, error) {
	if err := ctx.Err(); err != nil {
		return InitiativeInfo{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ini, ok := m.initiatives[id]
	if !ok {
		return InitiativeInfo{}, fmt.Errorf("initiative %q: %w", id, ErrNotFound)
	}
	return ini.info, nil
}

func (m *Memory) InitiativeStories(ctx context.Context, id string, kind StoryKind) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ini, ok := m.initiatives[id]
	if !ok {
		return nil, fmt.Errorf("initiative %q: %w", id, ErrNotFound)
	}
	ids := ini.official
	if kind == StoryActual {
		ids = ini.actual
	}
	out := make([]Record, 0, len(ids))
	for _, sid := range ids {
		if rec, ok := m.byID[sid]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := out[i]["id"].(string)
		b, _ := out[j]["id"].(string)
		return a < b
	})
	return out, nil
}

func recordGroups(rec Record) []string {
	switch list := rec["groups"].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func primaryGroup(rec Record) string {
	groups := recordGroups(rec)
	if len(groups) == 0 {
		return "unknown"
	}
	return groups[0]
}

func recordFloat(rec Record, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
