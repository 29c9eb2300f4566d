package narrative

// Severity is the ordinal classification used to rank risk signals and
// action items. The order low < medium < high < critical is strict.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lower-case label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a label to its Severity. Unrecognized labels parse as
// low so that a malformed rule table degrades instead of escalating.
func ParseSeverity(label string) Severity {
	switch label {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Clamp01 pins a value into [0,1]. Every weighted sum in the engine is
// clamped before it is returned: component scores at the boundary can
// overflow slightly under rounding.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Jaccard returns |a∩b| / |a∪b| over two string sets. An empty union is
// defined as full similarity (1): with no terms to compare there is no gap.
func Jaccard(a, b map[string]bool) float64 {
	union := make(map[string]bool, len(a)+len(b))
	inter := 0
	for k := range a {
		union[k] = true
	}
	for k := range b {
		if a[k] {
			inter++
		}
		union[k] = true
	}
	if len(union) == 0 {
		return 1
	}
	return float64(inter) / float64(len(union))
}

// Ratio returns pos/(pos+neg), or the neutral prior 0.5 when no evidence
// matched either side. This is the uniform insufficient-data policy for
// ratio-style scores across the engine.
func Ratio(pos, neg int) float64 {
	total := pos + neg
	if total == 0 {
		return 0.5
	}
	return float64(pos) / float64(total)
}
