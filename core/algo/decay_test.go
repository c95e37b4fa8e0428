package algo

import (
	"math"
	"testing"

	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/assert"
)

// TestRecencyWeight tests exponential decay against its half-life.
func TestRecencyWeight(t *testing.T) {
	tests := []struct {
		name     string
		age      float64
		halfLife float64
		expected float64
	}{
		{name: "fresh", age: 0, halfLife: 48, expected: 1.0},
		{name: "one half-life", age: 48, halfLife: 48, expected: 0.5},
		{name: "two half-lives", age: 96, halfLife: 48, expected: 0.25},
		{name: "future timestamp", age: -5, halfLife: 48, expected: 1.0},
		{name: "zero half-life", age: 10, halfLife: 0, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RecencyWeight(tt.age, tt.halfLife), 1e-9)
		})
	}
}

// TestRecencyWeightNeverZero checks that ancient content keeps a positive weight.
func TestRecencyWeightNeverZero(t *testing.T) {
	w := RecencyWeight(1e9, 1)
	assert.Greater(t, w, 0.0)
	assert.LessOrEqual(t, w, 1.0)
}

// TestRecencyWeightMonotonic checks that older content never outweighs newer content.
func TestRecencyWeightMonotonic(t *testing.T) {
	prev := RecencyWeight(0, 24)
	for age := 1.0; age < 500; age += 7 {
		cur := RecencyWeight(age, 24)
		assert.Less(t, cur, prev)
		prev = cur
	}
}

func TestContentTypeWeight(t *testing.T) {
	table := schema.GetDefaultContentWeights()

	assert.Equal(t, 1.5, ContentTypeWeight(table, schema.ThreadContent))
	assert.Equal(t, 0.3, ContentTypeWeight(table, schema.RepostContent))
	assert.Equal(t, 0.3, ContentTypeWeight(table, "livestream"), "unknown types get the lowest nonzero weight")

	withZero := map[schema.ContentType]float64{"a": 0, "b": 0.4, "c": 2}
	assert.Equal(t, 0.4, ContentTypeWeight(withZero, "zzz"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.1, 0.5, 1.0))
	assert.Equal(t, 1.0, Clamp(3, 0.5, 1.0))
	assert.Equal(t, 0.7, Clamp(0.7, 0.5, 1.0))
	assert.Equal(t, 0.5, Clamp(math.NaN(), 0.5, 1.0))
}

func TestEngagement(t *testing.T) {
	assert.Equal(t, 10.0+2*3+3*2, LinearEngagement(10, 3, 2))
	assert.Equal(t, 0.0, LinearEngagement(-4, -1, 0))
	assert.InDelta(t, math.Log1p(22), EngagementLog(10, 3, 2), 1e-12)
	assert.Equal(t, 0.0, EngagementLog(0, 0, 0))
}

func TestPipelineApply(t *testing.T) {
	p := Pipeline{
		{Key: schema.BreakdownSentiment, Value: 2.0, Floor: 0.8, Cap: 1.2},
		{Key: schema.BreakdownOriginality, Value: 0.1, Floor: 0.3, Cap: 1.0},
		{Key: schema.BreakdownSmartBoost, Value: 1.1, Floor: 1.0, Cap: 1.5},
	}
	product, breakdown := p.Apply()

	assert.InDelta(t, 1.2*0.3*1.1, product, 1e-12)
	assert.Equal(t, 1.2, breakdown[schema.BreakdownSentiment])
	assert.Equal(t, 0.3, breakdown[schema.BreakdownOriginality])
	assert.Equal(t, 1.1, breakdown[schema.BreakdownSmartBoost])

	empty, _ := Pipeline(nil).Apply()
	assert.Equal(t, 1.0, empty)
}

func TestRankScored(t *testing.T) {
	items := []Scored{{"c", 1}, {"a", 2}, {"b", 2}, {"d", 0.5}}
	ranked := RankScored(items, 3)

	assert.Equal(t, []Scored{{"a", 2}, {"b", 2}, {"c", 1}}, ranked)
	assert.Len(t, RankScored([]Scored{{"x", 1}}, -1), 1)
}

func BenchmarkRecencyWeight(b *testing.B) {
	for b.Loop() {
		_ = RecencyWeight(37.5, 48)
	}
}
