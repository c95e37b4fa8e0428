// Package mindshare turns per-project attention into basis-point shares.
package mindshare

import (
	"math"
	"sort"

	"github.com/huangsam/signalboard/core/algo"
	"github.com/huangsam/signalboard/schema"
)

// Quality holds the per-project quality signals before clamping.
// A value of 1.0 is neutral for every field.
type Quality struct {
	CreatorAuth  float64 `json:"creator_auth"`
	AudienceAuth float64 `json:"audience_auth"`
	Originality  float64 `json:"originality"`
	Sentiment    float64 `json:"sentiment"`
	SmartBoost   float64 `json:"smart_boost"`
}

// NeutralQuality is used for projects with no quality data.
func NeutralQuality() Quality {
	return Quality{CreatorAuth: 1, AudienceAuth: 1, Originality: 1, Sentiment: 1, SmartBoost: 1}
}

// Adjusted is the quality-adjusted attention of one project.
type Adjusted struct {
	ProjectID  string                          `json:"project_id"`
	Raw        float64                         `json:"raw"`
	Multiplier float64                         `json:"multiplier"`
	Value      float64                         `json:"value"`
	Breakdown  map[schema.BreakdownKey]float64 `json:"breakdown"`
}

// RawAttention is the weighted sum of the independently log-scaled components.
func RawAttention(in schema.ProjectAttention, weights map[schema.BreakdownKey]float64) float64 {
	return weights[schema.BreakdownPosts]*math.Log1p(float64(max(in.PostCount, 0))) +
		weights[schema.BreakdownCreators]*math.Log1p(float64(max(in.UniqueCreatorCount, 0))) +
		weights[schema.BreakdownVolume]*math.Log1p(algo.SafeNonNegative(in.TotalEngagement)) +
		weights[schema.BreakdownHeat]*math.Log1p(algo.SafeNonNegative(in.Heat))
}

// Adjust computes the quality-adjusted attention for every project, sorted by
// project id. Repeated project ids are merged by summing their components.
func Adjust(inputs []schema.ProjectAttention, quality map[string]Quality, cfg schema.EngineConfig) []Adjusted {
	merged := make(map[string]schema.ProjectAttention, len(inputs))
	for _, in := range inputs {
		m := merged[in.ProjectID]
		m.ProjectID = in.ProjectID
		m.PostCount += in.PostCount
		m.UniqueCreatorCount += in.UniqueCreatorCount
		m.TotalEngagement += in.TotalEngagement
		m.Heat += in.Heat
		merged[in.ProjectID] = m
	}

	out := make([]Adjusted, 0, len(merged))
	for id, in := range merged {
		q, ok := quality[id]
		if !ok {
			q = NeutralQuality()
		}
		raw := RawAttention(in, cfg.Mindshare.Weights)
		mult, breakdown := pipeline(q, cfg.Mindshare).Apply()
		breakdown[schema.BreakdownPosts] = float64(in.PostCount)
		breakdown[schema.BreakdownCreators] = float64(in.UniqueCreatorCount)
		breakdown[schema.BreakdownVolume] = in.TotalEngagement
		breakdown[schema.BreakdownHeat] = in.Heat
		out = append(out, Adjusted{
			ProjectID:  id,
			Raw:        raw,
			Multiplier: mult,
			Value:      algo.SafeNonNegative(raw * mult),
			Breakdown:  breakdown,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out
}

// pipeline orders the quality stages. The order is fixed.
func pipeline(q Quality, cfg schema.MindshareConfig) algo.Pipeline {
	return algo.Pipeline{
		algo.StageFrom(schema.BreakdownCreatorAuth, q.CreatorAuth, cfg.CreatorAuth),
		algo.StageFrom(schema.BreakdownAudienceAuth, q.AudienceAuth, cfg.AudienceAuth),
		algo.StageFrom(schema.BreakdownOriginality, q.Originality, cfg.Originality),
		algo.StageFrom(schema.BreakdownSentiment, q.Sentiment, cfg.Sentiment),
		algo.StageFrom(schema.BreakdownSmartBoost, q.SmartBoost, cfg.SmartBoost),
	}
}

// Normalize converts attention into basis points. The result sums to exactly
// TotalBasisPoints when any project has nonzero adjusted attention, and to 0
// otherwise. Any other sum is returned as an *InvariantViolationError.
func Normalize(inputs []schema.ProjectAttention, quality map[string]Quality, cfg schema.EngineConfig, window schema.Window, date string) (map[string]int, error) {
	adjusted := Adjust(inputs, quality, cfg)
	return FromAdjusted(adjusted, window, date)
}

// FromAdjusted apportions already adjusted values.
func FromAdjusted(adjusted []Adjusted, window schema.Window, date string) (map[string]int, error) {
	weights := make(map[string]float64, len(adjusted))
	for _, a := range adjusted {
		weights[a.ProjectID] = a.Value
	}
	bps := algo.Apportion(weights, schema.TotalBasisPoints)

	sum := 0
	for _, v := range bps {
		if v < 0 {
			return nil, &schema.InvariantViolationError{Window: window, Date: date, Sum: v, Want: schema.TotalBasisPoints}
		}
		sum += v
	}
	if sum != 0 && sum != schema.TotalBasisPoints {
		return nil, &schema.InvariantViolationError{Window: window, Date: date, Sum: sum, Want: schema.TotalBasisPoints}
	}
	return bps, nil
}

// Snapshots builds the persisted rows, attaching the change against the
// previous snapshot of each project. Projects without a previous value get a
// nil delta. Rows are sorted by bps descending, then project id.
func Snapshots(bps map[string]int, adjusted []Adjusted, previous map[string]int, window schema.Window, date string) []schema.MindshareSnapshot {
	attention := make(map[string]float64, len(adjusted))
	for _, a := range adjusted {
		attention[a.ProjectID] = a.Value
	}

	out := make([]schema.MindshareSnapshot, 0, len(bps))
	for id, v := range bps {
		snap := schema.MindshareSnapshot{
			ProjectID: id,
			Window:    window,
			Date:      date,
			Bps:       v,
			Attention: attention[id],
		}
		if prev, ok := previous[id]; ok {
			delta := v - prev
			snap.DeltaVsPrevious = &delta
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bps != out[j].Bps {
			return out[i].Bps > out[j].Bps
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}
