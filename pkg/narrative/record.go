package narrative

import "time"

// StoryFromRecord decodes a flat string-keyed record, as returned by the
// graph data port, into a Story. Missing or mistyped properties resolve
// to neutral defaults rather than excluding the story. A story with no
// sentiment still contributes to frame and marker counts elsewhere.
func StoryFromRecord(rec map[string]any) *Story {
	s := &Story{
		ID:             asString(rec["id"]),
		Summary:        asString(rec["summary"]),
		Sophistication: Sophistication(asString(rec["sophistication"])),
		Frame:          FrameUnknown,
		Function:       FunctionUnknown,
	}

	if v, ok := rec["sentiment"]; ok {
		if f, ok := asFloat(v); ok {
			s.Sentiment = f
			s.HasSentiment = true
			if s.Sentiment < -1 {
				s.Sentiment = -1
			}
			if s.Sentiment > 1 {
				s.Sentiment = 1
			}
		}
	}

	if f := Frame(asString(rec["agency_frame"])); frameKnown(f) {
		s.Frame = f
	}
	switch fn := NarrativeFunction(asString(rec["narrative_function"])); fn {
	case FunctionVision, FunctionSuccess, FunctionWarning, FunctionComplication:
		s.Function = fn
	}

	s.Groups = asStrings(rec["groups"])
	s.Concepts = asStrings(rec["concepts_mentioned"])

	if b, ok := rec["experimentation_indicator"].(bool); ok {
		s.Experimentation = b
	}
	switch t := rec["timestamp"].(type) {
	case time.Time:
		s.Timestamp = t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			s.Timestamp = parsed
		}
	}

	return s
}

// StoriesFromRecords decodes a record list, dropping records with no ID:
// an ID-less story cannot serve as evidence.
func StoriesFromRecords(recs []map[string]any) []*Story {
	stories := make([]*Story, 0, len(recs))
	for _, rec := range recs {
		s := StoryFromRecord(rec)
		if s.ID == "" {
			continue
		}
		stories = append(stories, s)
	}
	SortStories(stories)
	return stories
}

func frameKnown(f Frame) bool {
	for _, k := range KnownFrames {
		if f == k {
			return true
		}
	}
	return false
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
