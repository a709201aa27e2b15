package assessment

// Score boundaries are exclusive everywhere: a score has to be strictly greater
// than a boundary to reach the band above it. 80 is Medium Trust, 50 is Low
// Trust, and the fallback decision for 50 is deny.
const (
	HighTrustBoundary   = 80
	MediumTrustBoundary = 50
)

// Band enum untuk tampilan skor
type Band string

const (
	BandHigh    Band = "High Trust"
	BandMedium  Band = "Medium Trust"
	BandLow     Band = "Low Trust"
	BandBlocked Band = "Blocked"
)

func exceeds(score, boundary int) bool { return score > boundary }

// BandFor maps a score and the resolved decision to a display band. A deny
// always renders as Blocked regardless of the score.
func BandFor(score int, d Decision) Band {
	if d == DecisionDeny {
		return BandBlocked
	}
	return ScoreBand(score)
}

// ScoreBand ignores the decision.
func ScoreBand(score int) Band {
	switch {
	case exceeds(score, HighTrustBoundary):
		return BandHigh
	case exceeds(score, MediumTrustBoundary):
		return BandMedium
	default:
		return BandLow
	}
}
