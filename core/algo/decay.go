// Package algo has the pure weighting, decay, graph and apportionment primitives
// shared by every scoring engine.
package algo

import (
	"math"

	"github.com/huangsam/signalboard/schema"
)

// minRecencyWeight keeps very old content from decaying to exactly zero.
const minRecencyWeight = 1e-12

// RecencyWeight returns 0.5^(ageHours/halfLifeHours), always in (0, 1].
// Future timestamps count as age zero.
func RecencyWeight(ageHours, halfLifeHours float64) float64 {
	if halfLifeHours <= 0 || ageHours <= 0 || math.IsNaN(ageHours) {
		return 1.0
	}
	return math.Max(math.Pow(0.5, ageHours/halfLifeHours), minRecencyWeight)
}

// ContentTypeWeight looks up the weight of a content type.
// Unknown types get the lowest nonzero weight of the table.
func ContentTypeWeight(table map[schema.ContentType]float64, ct schema.ContentType) float64 {
	if w, ok := table[ct]; ok {
		return w
	}
	lowest := 0.0
	for _, w := range table {
		if w > 0 && (lowest == 0 || w < lowest) {
			lowest = w
		}
	}
	return lowest
}

// Clamp bounds val to [floor, cap].
func Clamp(val, floor, cap float64) float64 {
	if math.IsNaN(val) {
		return floor
	}
	if val < floor {
		return floor
	}
	if val > cap {
		return cap
	}
	return val
}

// LinearEngagement is likes + 2*replies + 3*reposts with negative counts ignored.
func LinearEngagement(likes, replies, reposts int) float64 {
	return float64(max(likes, 0)) + 2*float64(max(replies, 0)) + 3*float64(max(reposts, 0))
}

// EngagementLog is ln(1 + LinearEngagement), dampening viral outliers.
func EngagementLog(likes, replies, reposts int) float64 {
	return math.Log1p(LinearEngagement(likes, replies, reposts))
}

// SafeNonNegative maps negative and non-finite values to zero.
func SafeNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
