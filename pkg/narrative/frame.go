package narrative

// Frame is the interpretive lens a story applies to the change initiative.
type Frame string

const (
	FrameOpportunity Frame = "opportunity"
	FrameThreat      Frame = "threat"
	FrameTool        Frame = "tool"
	FramePartner     Frame = "partner"
	FrameReplacement Frame = "replacement"
	// FrameUnknown marks stories without a usable frame property. Unknown
	// frames are neutral: they never create or resolve a conflict.
	FrameUnknown Frame = "unknown"
)

// Valence is the emotional charge a frame carries.
type Valence string

const (
	ValencePositive Valence = "positive"
	ValenceNegative Valence = "negative"
	ValenceNeutral  Valence = "neutral"
)

// frameValence assigns each frame a signed magnitude. The sign gives the
// valence; the magnitude breaks dominance ties deterministically.
var frameValence = map[Frame]float64{
	FrameOpportunity: 1.0,
	FramePartner:     0.8,
	FrameTool:        0.0,
	FrameReplacement: -0.9,
	FrameThreat:      -1.0,
	FrameUnknown:     0.0,
}

// KnownFrames lists every frame the engine scores, in lexical order.
var KnownFrames = []Frame{
	FrameOpportunity, FramePartner, FrameReplacement, FrameThreat, FrameTool,
}

// FrameValence returns the frame's valence classification.
func FrameValence(f Frame) Valence {
	switch v := frameValence[f]; {
	case v > 0:
		return ValencePositive
	case v < 0:
		return ValenceNegative
	default:
		return ValenceNeutral
	}
}

// ValenceMagnitude returns the absolute charge of a frame, used to break
// ties between equally frequent frames.
func ValenceMagnitude(f Frame) float64 {
	v := frameValence[f]
	if v < 0 {
		return -v
	}
	return v
}

// OpposingFrames reports whether two frames carry opposing valence
// (opportunity/partner versus threat/replacement). Neutral and unknown
// frames oppose nothing.
func OpposingFrames(a, b Frame) bool {
	va, vb := FrameValence(a), FrameValence(b)
	return (va == ValencePositive && vb == ValenceNegative) ||
		(va == ValenceNegative && vb == ValencePositive)
}

// DominantFrame returns the most frequent frame in the distribution. Ties
// break toward the frame with the higher valence magnitude, then by lexical
// order of the frame name, so the result is fully deterministic. Unknown
// frames are excluded; an empty or all-unknown distribution yields
// FrameUnknown.
func DominantFrame(counts map[Frame]int) Frame {
	best := FrameUnknown
	bestCount := 0
	for _, f := range KnownFrames {
		c := counts[f]
		if c == 0 {
			continue
		}
		switch {
		case c > bestCount:
			best, bestCount = f, c
		case c == bestCount:
			if ValenceMagnitude(f) > ValenceMagnitude(best) {
				best = f
			} else if ValenceMagnitude(f) == ValenceMagnitude(best) && f < best {
				best = f
			}
		}
	}
	return best
}

// FrameCounts tallies the frame distribution over a story set, ignoring
// unknown frames.
func FrameCounts(stories []*Story) map[Frame]int {
	counts := make(map[Frame]int)
	for _, s := range stories {
		if s.Frame == FrameUnknown {
			continue
		}
		counts[s.Frame]++
	}
	return counts
}
