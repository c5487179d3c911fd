package summarize

import "math"

// coverage maps a depth level to the fraction of the source's sentences a
// summary should keep before length adjustments.
var coverage = [...]float64{
	1: 0.10,
	2: 0.20,
	3: 0.30,
	4: 0.45,
	5: 0.60,
}

const (
	minTarget         = 2
	shortDocSentences = 20
	depthOneCap       = 3
	deepBoostMinimum  = 15
	deepBoost         = 1.2
	deepLeaveOut      = 2
)

// TargetCount returns how many sentences a summary of a document with total
// sentences should keep at the given depth. Depth is a coverage fraction of
// the source, damped for documents shorter than twenty sentences and grown
// logarithmically for longer ones. The result is always within [2, total].
func TargetCount(total, depth int) int {
	if total <= minTarget {
		return total
	}
	depth = clampLevel(depth)

	base := int(float64(total) * coverage[depth])
	if base < minTarget {
		base = minTarget
	}
	lengthFactor := math.Min(1, float64(total)/shortDocSentences)
	multiplier := 1 + float64(depth-DefaultLevel)*0.5*lengthFactor
	if total > shortDocSentences {
		multiplier *= 1 + math.Log10(float64(total)/shortDocSentences)*0.2
	}
	n := clampInt(int(float64(base)*multiplier), minTarget, total)

	switch {
	case depth == MinLevel:
		n = min(n, depthOneCap)
	case depth == MaxLevel && total > deepBoostMinimum:
		n = min(total-deepLeaveOut, int(float64(n)*deepBoost))
	}
	return clampInt(n, minTarget, total)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampLevel maps zero to the default level and pulls anything else into
// [MinLevel, MaxLevel].
func clampLevel(v int) int {
	if v == 0 {
		return DefaultLevel
	}
	return clampInt(v, MinLevel, MaxLevel)
}
