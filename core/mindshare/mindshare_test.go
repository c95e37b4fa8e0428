package mindshare

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/signalboard/core/signal"
	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const date = "2026-03-01"

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func TestNormalize_EdgeCases(t *testing.T) {
	cfg := schema.DefaultEngineConfig()

	tests := []struct {
		name    string
		inputs  []schema.ProjectAttention
		wantSum int
		want    map[string]int
	}{
		{"no projects", nil, 0, map[string]int{}},
		{"all zero", []schema.ProjectAttention{{ProjectID: "a"}, {ProjectID: "b"}}, 0, map[string]int{"a": 0, "b": 0}},
		{"single nonzero", []schema.ProjectAttention{{ProjectID: "a", PostCount: 3}, {ProjectID: "b"}}, 10000, map[string]int{"a": 10000, "b": 0}},
		{"identical inputs", []schema.ProjectAttention{{ProjectID: "a", PostCount: 1}, {ProjectID: "b", PostCount: 1}}, 10000, map[string]int{"a": 5000, "b": 5000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bps, err := Normalize(tt.inputs, nil, cfg, schema.Window24h, date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bps)
			assert.Equal(t, tt.wantSum, sum(bps))
		})
	}
}

func TestNormalize_ExactSumRandom(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	r := rand.New(rand.NewPCG(7, 11))
	for trial := range 200 {
		n := 1 + r.IntN(40)
		inputs := make([]schema.ProjectAttention, n)
		for i := range inputs {
			inputs[i] = schema.ProjectAttention{
				ProjectID:          fmt.Sprintf("p%03d", i),
				PostCount:          r.IntN(500),
				UniqueCreatorCount: r.IntN(100),
				TotalEngagement:    r.Float64() * 1e6,
				Heat:               r.Float64() * 10,
			}
		}
		bps, err := Normalize(inputs, nil, cfg, schema.Window7d, date)
		require.NoError(t, err, "trial %d", trial)
		assert.Equal(t, schema.TotalBasisPoints, sum(bps), "trial %d", trial)
	}
}

func TestNormalize_ThreeIdenticalDifferByAtMostOne(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	in := schema.ProjectAttention{PostCount: 10, UniqueCreatorCount: 4, TotalEngagement: 300}
	inputs := []schema.ProjectAttention{in, in, in}
	inputs[0].ProjectID, inputs[1].ProjectID, inputs[2].ProjectID = "c", "a", "b"

	bps, err := Normalize(inputs, nil, cfg, schema.Window7d, date)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 3334, "b": 3333, "c": 3333}, bps, "remainder goes to the smaller project id")
}

func TestNormalize_LogDampening(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	inputs := []schema.ProjectAttention{
		{ProjectID: "whale", PostCount: 1000, UniqueCreatorCount: 1000, TotalEngagement: 1e6},
		{ProjectID: "small", PostCount: 10, UniqueCreatorCount: 10, TotalEngagement: 1e3},
	}
	bps, err := Normalize(inputs, nil, cfg, schema.Window7d, date)
	require.NoError(t, err)
	assert.Greater(t, bps["whale"], bps["small"], "rank order is preserved")
	assert.Less(t, bps["whale"], 9000, "a 100x larger input must not take nearly everything")
}

func TestNormalize_QualityStagesAreClamped(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	inputs := []schema.ProjectAttention{
		{ProjectID: "a", PostCount: 5, TotalEngagement: 100},
		{ProjectID: "b", PostCount: 5, TotalEngagement: 100},
	}
	quality := map[string]Quality{
		// Creator auth of 0 clamps to its 0.5 floor.
		"a": {CreatorAuth: 0, AudienceAuth: 1, Originality: 1, Sentiment: 1, SmartBoost: 1},
	}
	bps, err := Normalize(inputs, quality, cfg, schema.Window7d, date)
	require.NoError(t, err)
	assert.Equal(t, 3333, bps["a"])
	assert.Equal(t, 6667, bps["b"])
}

func TestAdjust_MergesDuplicatesAndRecordsBreakdown(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	adjusted := Adjust([]schema.ProjectAttention{
		{ProjectID: "b", PostCount: 1},
		{ProjectID: "a", PostCount: 2, Heat: 1},
		{ProjectID: "a", PostCount: 3},
	}, nil, cfg)
	require.Len(t, adjusted, 2)
	assert.Equal(t, "a", adjusted[0].ProjectID)
	assert.Equal(t, 5.0, adjusted[0].Breakdown[schema.BreakdownPosts])
	assert.Equal(t, 1.0, adjusted[0].Breakdown[schema.BreakdownHeat])
	assert.Equal(t, 1.0, adjusted[0].Multiplier)
	assert.Equal(t, 1.0, adjusted[0].Breakdown[schema.BreakdownSmartBoost])
}

func TestFromAdjusted_NegativeIsNeverProduced(t *testing.T) {
	bps, err := FromAdjusted([]Adjusted{{ProjectID: "a", Value: -5}, {ProjectID: "b", Value: 1}}, schema.Window7d, date)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 10000}, bps)
}

func TestInvariantViolationError(t *testing.T) {
	var err error = &schema.InvariantViolationError{Window: schema.Window7d, Date: date, Sum: 9999, Want: 10000}
	var target *schema.InvariantViolationError
	require.True(t, errors.As(fmt.Errorf("unit 7d: %w", err), &target))
	assert.Equal(t, 9999, target.Sum)
	assert.Contains(t, err.Error(), "9999")
}

func TestThreadOutranksRepost(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	created := now.Add(-2 * time.Hour)
	posts := []schema.Post{
		{ID: "1", AuthorID: "x", ProjectID: "P", CreatedAt: created, Likes: 500, ContentType: schema.ThreadContent},
		{ID: "2", AuthorID: "y", ProjectID: "Q", CreatedAt: created, Likes: 500, ContentType: schema.RepostContent},
	}
	inputs := Aggregate(posts, schema.Window24h, cfg, now, nil)
	require.Len(t, inputs, 2)

	bps, err := Normalize(inputs, nil, cfg, schema.Window24h, date)
	require.NoError(t, err)
	assert.Greater(t, bps["P"], bps["Q"])
	assert.Equal(t, 10000, bps["P"]+bps["Q"])
}

func TestAggregate(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	posts := []schema.Post{
		{AuthorID: "x", ProjectID: "P", CreatedAt: now, Likes: 10, ContentType: schema.AnalysisContent},
		{AuthorID: "x", ProjectID: "P", CreatedAt: now, Replies: 1, ContentType: schema.ReplyContent},
		{AuthorID: "y", ProjectID: "P", CreatedAt: now.Add(-48 * time.Hour), Likes: 100}, // outside 24h
		{AuthorID: "z", ProjectID: "", CreatedAt: now, Likes: 100},
	}
	got := Aggregate(posts, schema.Window24h, cfg, now, map[string]float64{"R": 2.5, "S": 0})
	require.Len(t, got, 2)

	assert.Equal(t, "P", got[0].ProjectID)
	assert.Equal(t, 2, got[0].PostCount)
	assert.Equal(t, 1, got[0].UniqueCreatorCount)
	assert.InDelta(t, 10*1.5+2*0.6, got[0].TotalEngagement, 1e-9)

	assert.Equal(t, schema.ProjectAttention{ProjectID: "R", Heat: 2.5}, got[1])
}

func TestQualities(t *testing.T) {
	cfg := schema.DefaultEngineConfig()
	pos := 1.0
	posts := []schema.Post{
		{AuthorID: "smart", ProjectID: "P", CreatedAt: now, Sentiment: &pos},
		{AuthorID: "bot", ProjectID: "P", CreatedAt: now, IsDuplicate: true},
		{AuthorID: "anon", ProjectID: "P", CreatedAt: now},
		{AuthorID: "anon", ProjectID: "Q", CreatedAt: now},
	}
	authority := map[string]*signal.Authenticity{
		"smart": {BotRisk: 0, AudienceOrganic: 1, IsSmart: true},
		"bot":   {BotRisk: 0.8, AudienceOrganic: 0.5},
	}
	q := Qualities(posts, authority, schema.Window7d, cfg, now)

	p := q["P"]
	assert.InDelta(t, 0.6, p.CreatorAuth, 1e-12)
	assert.InDelta(t, 0.75, p.AudienceAuth, 1e-12)
	assert.InDelta(t, 2.0/3.0, p.Originality, 1e-12)
	assert.InDelta(t, 1.2, p.Sentiment, 1e-12)
	assert.InDelta(t, 1+0.5/3, p.SmartBoost, 1e-12)

	assert.Equal(t, NeutralQuality(), q["Q"], "no authority data is neutral")
}

func TestSnapshots(t *testing.T) {
	bps := map[string]int{"a": 6000, "b": 4000, "c": 0}
	adjusted := []Adjusted{{ProjectID: "a", Value: 3}, {ProjectID: "b", Value: 2}}
	snaps := Snapshots(bps, adjusted, map[string]int{"a": 5000}, schema.Window30d, date)
	require.Len(t, snaps, 3)

	assert.Equal(t, "a", snaps[0].ProjectID)
	require.NotNil(t, snaps[0].DeltaVsPrevious)
	assert.Equal(t, 1000, *snaps[0].DeltaVsPrevious)
	assert.Equal(t, 3.0, snaps[0].Attention)
	assert.Nil(t, snaps[1].DeltaVsPrevious, "no previous snapshot means no delta")
	assert.Equal(t, "c", snaps[2].ProjectID)
	assert.Equal(t, schema.Window30d, snaps[2].Window)
}

func BenchmarkNormalize(b *testing.B) {
	cfg := schema.DefaultEngineConfig()
	inputs := make([]schema.ProjectAttention, 500)
	for i := range inputs {
		inputs[i] = schema.ProjectAttention{ProjectID: fmt.Sprintf("p%d", i), PostCount: i, TotalEngagement: float64(i * i)}
	}
	for b.Loop() {
		_, _ = Normalize(inputs, nil, cfg, schema.Window7d, date)
	}
}
