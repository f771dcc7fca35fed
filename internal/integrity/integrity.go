// Package integrity computes the composite audit score that gates sending a draft.
package integrity

import (
	"math"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
)

// Band is the display bucket of an index.
type Band string

const (
	BandPassed  Band = "passed"  // > 85, ready for submission
	BandFlagged Band = "flagged" // 70..85, low integrity but sendable
	BandBlocked Band = "blocked" // < 70, send blocked
)

type Assessment struct {
	Index       int  `json:"index"`
	Passed      bool `json:"passed"`
	SendAllowed bool `json:"send_allowed"`
	Band        Band `json:"band"`
}

// Index returns the 0..100 integrity index. Only items with at least one
// recommendation count toward the spec-match mean; with none the index is 0.
// The pricing result does not change the value but is part of the inputs the
// index is recomputed from.
func Index(matches []entity.MatchedItem, _ *entity.PricingResult) int {
	var sum float64
	var n int
	for _, m := range matches {
		if len(m.Recommendations) == 0 {
			continue
		}
		sum += float64(clamp(m.SpecMatchScore))
		n++
	}
	if n == 0 {
		return 0
	}
	avg := sum / float64(n)
	// Weights are scaled to integers so x.5 values round exactly.
	v := (constants.WeightSpecMatch*10*avg +
		constants.WeightPricing*10*constants.PricingConfidenceScore +
		constants.WeightAIConfidence*10*constants.AIConfidenceScore) / 10
	return clamp(int(math.Round(v)))
}

// Assess classifies an index against the pass and send thresholds.
func Assess(index int) Assessment {
	index = clamp(index)
	a := Assessment{
		Index:       index,
		Passed:      index > constants.IntegrityPassThreshold,
		SendAllowed: index >= constants.IntegritySendThreshold,
	}
	switch {
	case a.Passed:
		a.Band = BandPassed
	case a.SendAllowed:
		a.Band = BandFlagged
	default:
		a.Band = BandBlocked
	}
	return a
}

// Evaluate is Assess(Index(matches, pricing)).
func Evaluate(matches []entity.MatchedItem, pricing *entity.PricingResult) Assessment {
	return Assess(Index(matches, pricing))
}

func clamp(v int) int {
	return max(0, min(v, 100))
}
