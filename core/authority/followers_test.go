package authority

import (
	"testing"
	"time"

	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(d string, count int) schema.AuthorityScore {
	return schema.AuthorityScore{AccountID: "acc", Date: d, SmartFollowers: schema.Exact{N: count, Percent: float64(count)}}
}

func day(s string) time.Time {
	t, _ := time.Parse(schema.SnapshotDateFormat, s)
	return t
}

func TestSmartFollowersAt(t *testing.T) {
	cfg := schema.DefaultEngineConfig().Authority
	history := []schema.AuthorityScore{
		snap("2026-03-01", 40),
		snap("2026-01-30", 10),
		snap("2026-02-22", 31),
		snap("2026-02-24", 33),
	}

	report, ok := SmartFollowersAt(history, day("2026-03-01"), cfg)
	require.True(t, ok)
	assert.Equal(t, "acc", report.AccountID)
	assert.Equal(t, 40, report.Current.Count())
	require.NotNil(t, report.Delta7d)
	assert.Equal(t, 9, *report.Delta7d) // vs 2026-02-22
	require.NotNil(t, report.Delta30d)
	assert.Equal(t, 30, *report.Delta30d) // vs 2026-01-30
}

func TestSmartFollowersAt_NoPriorSnapshot(t *testing.T) {
	cfg := schema.DefaultEngineConfig().Authority
	report, ok := SmartFollowersAt([]schema.AuthorityScore{snap("2026-03-01", 5)}, day("2026-03-01"), cfg)
	require.True(t, ok)
	assert.Nil(t, report.Delta7d, "missing history is null, not zero")
	assert.Nil(t, report.Delta30d)
}

func TestSmartFollowersAt_PriorTooOld(t *testing.T) {
	cfg := schema.DefaultEngineConfig().Authority
	history := []schema.AuthorityScore{snap("2026-03-01", 5), snap("2026-02-10", 1)}

	report, ok := SmartFollowersAt(history, day("2026-03-01"), cfg)
	require.True(t, ok)
	assert.Nil(t, report.Delta7d, "2026-02-10 is outside the 7d tolerance")
	assert.Nil(t, report.Delta30d, "2026-02-10 is after the 30d target")
}

func TestSmartFollowersAt_UsesNearestBeforeAsOf(t *testing.T) {
	cfg := schema.DefaultEngineConfig().Authority
	history := []schema.AuthorityScore{snap("2026-03-05", 99), snap("2026-02-27", 12)}

	report, ok := SmartFollowersAt(history, day("2026-03-01"), cfg)
	require.True(t, ok)
	assert.Equal(t, 12, report.Current.Count())
	assert.Equal(t, "2026-03-01", report.AsOf)
}

func TestSmartFollowersAt_Empty(t *testing.T) {
	_, ok := SmartFollowersAt(nil, day("2026-03-01"), schema.DefaultEngineConfig().Authority)
	assert.False(t, ok)

	_, ok = SmartFollowersAt([]schema.AuthorityScore{snap("2026-04-01", 1)}, day("2026-03-01"), schema.DefaultEngineConfig().Authority)
	assert.False(t, ok)
}

func TestSmartFollowersAt_PreservesEstimateTag(t *testing.T) {
	history := []schema.AuthorityScore{{AccountID: "acc", Date: "2026-03-01", SmartFollowers: schema.Estimate{N: 3, Percent: 1.5}}}
	report, ok := SmartFollowersAt(history, day("2026-03-01"), schema.DefaultEngineConfig().Authority)
	require.True(t, ok)
	assert.True(t, schema.IsEstimate(report.Current))
}

func TestSmartFollowersAt_NoDeltaAcrossVariants(t *testing.T) {
	cfg := schema.DefaultEngineConfig().Authority
	history := []schema.AuthorityScore{
		{AccountID: "acc", Date: "2026-01-29", SmartFollowers: schema.Exact{N: 2, Percent: 1}},
		{AccountID: "acc", Date: "2026-02-22", SmartFollowers: schema.Estimate{N: 40, Percent: 20}},
		{AccountID: "acc", Date: "2026-03-01", SmartFollowers: schema.Exact{N: 3, Percent: 1.5}},
	}

	report, ok := SmartFollowersAt(history, day("2026-03-01"), cfg)
	require.True(t, ok)
	assert.Nil(t, report.Delta7d, "an estimate is not comparable with an exact count")
	require.NotNil(t, report.Delta30d)
	assert.Equal(t, 1, *report.Delta30d)
}
