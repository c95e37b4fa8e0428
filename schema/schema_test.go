package schema

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultEngineConfig().Validate())
}

func TestEngineConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
		field  string
	}{
		{"negative half-life", func(c *EngineConfig) { c.Decay.HalfLives[Window7d] = -time.Hour }, "decay.half_lives.7d"},
		{"empty content weights", func(c *EngineConfig) { c.Decay.ContentWeights = nil }, "decay.content_weights"},
		{"negative content weight", func(c *EngineConfig) { c.Decay.ContentWeights[MemeContent] = -1 }, "decay.content_weights.meme"},
		{"zero content weight", func(c *EngineConfig) { c.Decay.ContentWeights[RepostContent] = 0 }, "decay.content_weights.repost"},
		{"NaN content weight", func(c *EngineConfig) { c.Decay.ContentWeights[ThreadContent] = math.NaN() }, "decay.content_weights.thread"},
		{"zero sentiment floor", func(c *EngineConfig) { c.Signal.Sentiment.Floor = 0 }, "signal.sentiment"},
		{"zero authenticity floor", func(c *EngineConfig) { c.Signal.Authenticity.Floor = 0 }, "signal.authenticity"},
		{"zero originality floor", func(c *EngineConfig) { c.Mindshare.Originality.Floor = 0 }, "mindshare.originality"},
		{"NaN saturation", func(c *EngineConfig) { c.Signal.SaturationK = math.NaN() }, "signal.saturation_k"},
		{"infinite sentiment cap", func(c *EngineConfig) { c.Signal.Sentiment.Cap = math.Inf(1) }, "signal.sentiment.cap"},
		{"NaN heat weight", func(c *EngineConfig) { c.Mindshare.Weights[BreakdownHeat] = math.NaN() }, "mindshare.weights.heat"},
		{"unknown estimate band", func(c *EngineConfig) { c.Authority.EstimateBands = []TrustBand{BandA, "Z"} }, "authority.estimate_bands"},
		{"duplicate factor of one", func(c *EngineConfig) { c.Signal.DuplicateFactor = 1 }, "signal.duplicate_factor"},
		{"inverted sentiment clamp", func(c *EngineConfig) { c.Signal.Sentiment = Bounds{Floor: 1.3, Cap: 1.2} }, "signal.sentiment"},
		{"bands out of order", func(c *EngineConfig) { c.Signal.BandB = 90 }, "signal.bands"},
		{"damping of one", func(c *EngineConfig) { c.Authority.Damping = 1 }, "authority.damping"},
		{"zero iterations", func(c *EngineConfig) { c.Authority.MaxIterations = 0 }, "authority.max_iterations"},
		{"percent above 100", func(c *EngineConfig) { c.Authority.SmartTopPercent = 101 }, "authority.smart_top_percent"},
		{"weights off by ten percent", func(c *EngineConfig) { c.Mindshare.Weights[BreakdownVolume] = 0.55 }, "mindshare.weights"},
		{"negative weight", func(c *EngineConfig) {
			c.Mindshare.Weights[BreakdownVolume] = 0.75
			c.Mindshare.Weights[BreakdownHeat] = -0.15
		}, "mindshare.weights.heat"},
		{"smart boost floor above cap", func(c *EngineConfig) { c.Mindshare.SmartBoost.Floor = 2 }, "mindshare.smart_boost"},
		{"multiplier below one", func(c *EngineConfig) { c.Leaderboard.VerifiedMultiplier = 0.5 }, "leaderboard.verified_multiplier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(&cfg)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(cfg.Validate(), &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestEngineConfigClone(t *testing.T) {
	cfg := DefaultEngineConfig()
	clone := cfg.Clone()
	clone.Decay.HalfLives[Window24h] = time.Minute
	clone.Authority.EstimateBands[0] = BandD

	assert.Equal(t, 6*time.Hour, cfg.Decay.HalfLives[Window24h])
	assert.Equal(t, BandA, cfg.Authority.EstimateBands[0])
	assert.Equal(t, 6.0, cfg.HalfLife(Window24h))
}

func TestArenaContains(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	arena := Arena{ID: "a1", StartsAt: start, EndsAt: end}

	assert.True(t, arena.Contains(start))
	assert.True(t, arena.Contains(end.Add(-time.Second)))
	assert.False(t, arena.Contains(end), "end is exclusive")
	assert.False(t, arena.Contains(start.Add(-time.Second)))
	assert.True(t, Arena{}.Contains(start), "zero bounds are open")
}

func TestSmartFollowersJSON(t *testing.T) {
	exact, err := json.Marshal(AuthorityScore{AccountID: "a", SmartFollowers: Exact{N: 3, Percent: 1.5}})
	require.NoError(t, err)
	assert.Contains(t, string(exact), `"smart_followers":{"kind":"exact","count":3,"pct":1.5}`)

	est, err := json.Marshal(Estimate{N: 2, Percent: 20})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"estimate","count":2,"pct":20}`, string(est))

	assert.True(t, IsEstimate(NewSmartFollowers(1, 1, true)))
	assert.False(t, IsEstimate(NewSmartFollowers(1, 1, false)))
}

func TestAuthorityRecordRoundTrip(t *testing.T) {
	in := AuthorityScore{
		AccountID:       "a",
		Date:            "2026-03-01",
		AuthorityRaw:    2,
		BotRisk:         0.25,
		Score:           1.5,
		IsSmart:         true,
		AudienceOrganic: 0.8,
		SmartFollowers:  Estimate{N: 4, Percent: 10},
	}
	assert.Equal(t, in, in.ToRecord().ToAuthorityScore())

	in.SmartFollowers = nil
	rec := in.ToRecord()
	assert.Nil(t, rec.SmartFollowers)
	assert.Nil(t, rec.ToAuthorityScore().SmartFollowers)
}

func TestMindshareRecordRoundTrip(t *testing.T) {
	delta := -12
	in := MindshareSnapshot{ProjectID: "p", Window: Window30d, Date: "2026-03-01", Bps: 4200, DeltaVsPrevious: &delta, Attention: 3.1}
	assert.Equal(t, in, in.ToRecord().ToSnapshot())
}

func TestErrorMessages(t *testing.T) {
	err := &InvariantViolationError{Window: Window7d, Date: "2026-03-01", Sum: 9999, Want: TotalBasisPoints}
	assert.Contains(t, err.Error(), "sum is 9999")

	unit := UnitError{Unit: "mindshare/7d", Err: err}
	var inv *InvariantViolationError
	assert.True(t, errors.As(unit, &inv))
	assert.Equal(t, "mindshare/7d: "+err.Error(), unit.Error())

	w := &NonConvergenceWarning{Iterations: 100, Delta: 0.01, Tolerance: 1e-6}
	assert.Contains(t, w.String(), "100 iterations")
}

func TestWindowDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, Window24h.Duration())
	assert.Equal(t, 7*24*time.Hour, Window7d.Duration())
	assert.Equal(t, 30*24*time.Hour, Window30d.Duration())
}
