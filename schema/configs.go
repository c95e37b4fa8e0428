package schema

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// TotalBasisPoints is the fixed sum of mindshare shares per (window, date).
const TotalBasisPoints = 10000

// weightSumTolerance is how far a weight set may drift from 1.0.
const weightSumTolerance = 0.001

// Bounds is a floor/cap pair for one clamped multiplier stage.
type Bounds struct {
	Floor float64 `json:"floor"`
	Cap   float64 `json:"cap"`
}

// DecayConfig holds the shared recency and content weighting parameters.
type DecayConfig struct {
	HalfLives      map[Window]time.Duration `json:"half_lives"`
	ContentWeights map[ContentType]float64  `json:"content_weights"`
}

// SignalConfig parameterizes the per-creator signal score.
type SignalConfig struct {
	SaturationK     float64 `json:"saturation_k"`
	DuplicateFactor float64 `json:"duplicate_factor"`
	SentimentGain   float64 `json:"sentiment_gain"`
	Sentiment       Bounds  `json:"sentiment"`
	Authenticity    Bounds  `json:"authenticity"`
	SmartBonus      float64 `json:"smart_bonus"`
	BandA           float64 `json:"band_a"`
	BandB           float64 `json:"band_b"`
	BandC           float64 `json:"band_c"`
}

// AuthorityConfig parameterizes PageRank, bot risk and smart classification.
type AuthorityConfig struct {
	Damping              float64     `json:"damping"`
	Tolerance            float64     `json:"tolerance"`
	MaxIterations        int         `json:"max_iterations"`
	SmartTopN            int         `json:"smart_top_n"`
	SmartTopPercent      float64     `json:"smart_top_percent"`
	BotRiskThreshold     float64     `json:"bot_risk_threshold"`
	BotRiskCap           float64     `json:"bot_risk_cap"`
	NewAccountDays       int         `json:"new_account_days"`
	FollowRatioThreshold float64     `json:"follow_ratio_threshold"`
	AgeRiskWeight        float64     `json:"age_risk_weight"`
	RatioRiskWeight      float64     `json:"ratio_risk_weight"`
	EstimateBands        []TrustBand `json:"estimate_bands"`
	DeltaToleranceDays   int         `json:"delta_tolerance_days"`
}

// MindshareConfig parameterizes attention scoring and quality stages.
type MindshareConfig struct {
	Weights        map[BreakdownKey]float64 `json:"weights"`
	CreatorAuth    Bounds                   `json:"creator_auth"`
	AudienceAuth   Bounds                   `json:"audience_auth"`
	Originality    Bounds                   `json:"originality"`
	SentimentGain  float64                  `json:"sentiment_gain"`
	Sentiment      Bounds                   `json:"sentiment"`
	SmartBoostGain float64                  `json:"smart_boost_gain"`
	SmartBoost     Bounds                   `json:"smart_boost"`
}

// LeaderboardConfig parameterizes the arena merge.
type LeaderboardConfig struct {
	VerifiedMultiplier float64 `json:"verified_multiplier"`
}

// EngineConfig is the immutable configuration passed into every engine function.
// Treat it as a value: use Clone before modifying a shared instance.
type EngineConfig struct {
	Decay       DecayConfig       `json:"decay"`
	Signal      SignalConfig      `json:"signal"`
	Authority   AuthorityConfig   `json:"authority"`
	Mindshare   MindshareConfig   `json:"mindshare"`
	Leaderboard LeaderboardConfig `json:"leaderboard"`
}

// DefaultEngineConfig returns the production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Decay: DecayConfig{
			HalfLives:      GetDefaultHalfLives(),
			ContentWeights: GetDefaultContentWeights(),
		},
		Signal: SignalConfig{
			SaturationK:     10,
			DuplicateFactor: 0.25,
			SentimentGain:   0.5,
			Sentiment:       Bounds{Floor: 0.6, Cap: 1.2},
			Authenticity:    Bounds{Floor: 0.5, Cap: 1.1},
			SmartBonus:      0.1,
			BandA:           80,
			BandB:           60,
			BandC:           40,
		},
		Authority: AuthorityConfig{
			Damping:              0.85,
			Tolerance:            1e-6,
			MaxIterations:        100,
			SmartTopN:            1000,
			SmartTopPercent:      10,
			BotRiskThreshold:     0.7,
			BotRiskCap:           0.95,
			NewAccountDays:       30,
			FollowRatioThreshold: 10,
			AgeRiskWeight:        0.5,
			RatioRiskWeight:      0.5,
			EstimateBands:        []TrustBand{BandA, BandB},
			DeltaToleranceDays:   3,
		},
		Mindshare: MindshareConfig{
			Weights:        GetDefaultAttentionWeights(),
			CreatorAuth:    Bounds{Floor: 0.5, Cap: 1.0},
			AudienceAuth:   Bounds{Floor: 0.5, Cap: 1.0},
			Originality:    Bounds{Floor: 0.3, Cap: 1.0},
			SentimentGain:  0.2,
			Sentiment:      Bounds{Floor: 0.8, Cap: 1.2},
			SmartBoostGain: 0.5,
			SmartBoost:     Bounds{Floor: 1.0, Cap: 1.5},
		},
		Leaderboard: LeaderboardConfig{
			VerifiedMultiplier: 1.5,
		},
	}
}

// Clone returns a deep copy.
func (c EngineConfig) Clone() EngineConfig {
	clone := c
	clone.Decay.HalfLives = maps.Clone(c.Decay.HalfLives)
	clone.Decay.ContentWeights = maps.Clone(c.Decay.ContentWeights)
	clone.Authority.EstimateBands = slices.Clone(c.Authority.EstimateBands)
	clone.Mindshare.Weights = maps.Clone(c.Mindshare.Weights)
	return clone
}

// HalfLife returns the recency half-life for a window, in hours.
func (c EngineConfig) HalfLife(w Window) float64 {
	if hl, ok := c.Decay.HalfLives[w]; ok {
		return hl.Hours()
	}
	return GetDefaultHalfLives()[w].Hours()
}

// Validate checks every parameter and returns the first *ConfigurationError found.
func (c EngineConfig) Validate() error {
	for _, w := range AllWindows {
		if hl, ok := c.Decay.HalfLives[w]; ok && hl <= 0 {
			return &ConfigurationError{Field: fmt.Sprintf("decay.half_lives.%s", w), Reason: "must be positive"}
		}
	}
	if len(c.Decay.ContentWeights) == 0 {
		return &ConfigurationError{Field: "decay.content_weights", Reason: "must not be empty"}
	}
	for ct, w := range c.Decay.ContentWeights {
		if !(w > 0) || math.IsInf(w, 0) {
			return &ConfigurationError{Field: fmt.Sprintf("decay.content_weights.%s", ct), Reason: "must be a positive finite number"}
		}
	}
	if err := c.validateFinite(); err != nil {
		return err
	}

	s := c.Signal
	if s.SaturationK <= 0 {
		return &ConfigurationError{Field: "signal.saturation_k", Reason: "must be positive"}
	}
	if s.DuplicateFactor <= 0 || s.DuplicateFactor >= 1 {
		return &ConfigurationError{Field: "signal.duplicate_factor", Reason: "must be in (0, 1)"}
	}
	if err := validateBounds("signal.sentiment", s.Sentiment); err != nil {
		return err
	}
	if err := validateBounds("signal.authenticity", s.Authenticity); err != nil {
		return err
	}
	if s.SmartBonus < 0 {
		return &ConfigurationError{Field: "signal.smart_bonus", Reason: "must not be negative"}
	}
	if !(s.BandA > s.BandB && s.BandB > s.BandC && s.BandC >= 0 && s.BandA <= 100) {
		return &ConfigurationError{Field: "signal.bands", Reason: fmt.Sprintf("need 100 >= A > B > C >= 0, got A=%.1f B=%.1f C=%.1f", s.BandA, s.BandB, s.BandC)}
	}

	a := c.Authority
	if a.Damping <= 0 || a.Damping >= 1 {
		return &ConfigurationError{Field: "authority.damping", Reason: "must be in (0, 1)"}
	}
	if a.Tolerance <= 0 {
		return &ConfigurationError{Field: "authority.tolerance", Reason: "must be positive"}
	}
	if a.MaxIterations < 1 {
		return &ConfigurationError{Field: "authority.max_iterations", Reason: "must be at least 1"}
	}
	if a.SmartTopN < 0 {
		return &ConfigurationError{Field: "authority.smart_top_n", Reason: "must not be negative"}
	}
	if a.SmartTopPercent < 0 || a.SmartTopPercent > 100 {
		return &ConfigurationError{Field: "authority.smart_top_percent", Reason: "must be between 0 and 100"}
	}
	if a.BotRiskThreshold <= 0 || a.BotRiskThreshold > 1 {
		return &ConfigurationError{Field: "authority.bot_risk_threshold", Reason: "must be in (0, 1]"}
	}
	if a.BotRiskCap < 0 || a.BotRiskCap > 1 {
		return &ConfigurationError{Field: "authority.bot_risk_cap", Reason: "must be in [0, 1]"}
	}
	if a.NewAccountDays < 0 || a.FollowRatioThreshold <= 0 {
		return &ConfigurationError{Field: "authority.bot_heuristics", Reason: "new_account_days must be >= 0 and follow_ratio_threshold > 0"}
	}
	if a.AgeRiskWeight < 0 || a.RatioRiskWeight < 0 {
		return &ConfigurationError{Field: "authority.risk_weights", Reason: "must not be negative"}
	}
	if a.DeltaToleranceDays < 0 {
		return &ConfigurationError{Field: "authority.delta_tolerance_days", Reason: "must not be negative"}
	}
	for _, b := range a.EstimateBands {
		if !slices.Contains(AllTrustBands, b) {
			return &ConfigurationError{Field: "authority.estimate_bands", Reason: fmt.Sprintf("unknown trust band %q", b)}
		}
	}

	m := c.Mindshare
	if err := ValidateWeightSum("mindshare.weights", m.Weights); err != nil {
		return err
	}
	for _, b := range []struct {
		name   string
		bounds Bounds
	}{
		{"mindshare.creator_auth", m.CreatorAuth},
		{"mindshare.audience_auth", m.AudienceAuth},
		{"mindshare.originality", m.Originality},
		{"mindshare.sentiment", m.Sentiment},
		{"mindshare.smart_boost", m.SmartBoost},
	} {
		if err := validateBounds(b.name, b.bounds); err != nil {
			return err
		}
	}

	if c.Leaderboard.VerifiedMultiplier < 1 {
		return &ConfigurationError{Field: "leaderboard.verified_multiplier", Reason: "must be at least 1.0"}
	}
	return nil
}

// validateFinite rejects NaN and infinite scalars. NaN slips past every
// ordered comparison below, so it is checked first.
func (c EngineConfig) validateFinite() error {
	s, a, m := c.Signal, c.Authority, c.Mindshare
	for _, v := range []struct {
		field string
		value float64
	}{
		{"signal.saturation_k", s.SaturationK},
		{"signal.duplicate_factor", s.DuplicateFactor},
		{"signal.sentiment_gain", s.SentimentGain},
		{"signal.sentiment.floor", s.Sentiment.Floor},
		{"signal.sentiment.cap", s.Sentiment.Cap},
		{"signal.authenticity.floor", s.Authenticity.Floor},
		{"signal.authenticity.cap", s.Authenticity.Cap},
		{"signal.smart_bonus", s.SmartBonus},
		{"signal.band_a", s.BandA},
		{"signal.band_b", s.BandB},
		{"signal.band_c", s.BandC},
		{"authority.damping", a.Damping},
		{"authority.tolerance", a.Tolerance},
		{"authority.smart_top_percent", a.SmartTopPercent},
		{"authority.bot_risk_threshold", a.BotRiskThreshold},
		{"authority.bot_risk_cap", a.BotRiskCap},
		{"authority.follow_ratio_threshold", a.FollowRatioThreshold},
		{"authority.age_risk_weight", a.AgeRiskWeight},
		{"authority.ratio_risk_weight", a.RatioRiskWeight},
		{"mindshare.creator_auth.floor", m.CreatorAuth.Floor},
		{"mindshare.creator_auth.cap", m.CreatorAuth.Cap},
		{"mindshare.audience_auth.floor", m.AudienceAuth.Floor},
		{"mindshare.audience_auth.cap", m.AudienceAuth.Cap},
		{"mindshare.originality.floor", m.Originality.Floor},
		{"mindshare.originality.cap", m.Originality.Cap},
		{"mindshare.sentiment_gain", m.SentimentGain},
		{"mindshare.sentiment.floor", m.Sentiment.Floor},
		{"mindshare.sentiment.cap", m.Sentiment.Cap},
		{"mindshare.smart_boost_gain", m.SmartBoostGain},
		{"mindshare.smart_boost.floor", m.SmartBoost.Floor},
		{"mindshare.smart_boost.cap", m.SmartBoost.Cap},
		{"leaderboard.verified_multiplier", c.Leaderboard.VerifiedMultiplier},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return &ConfigurationError{Field: v.field, Reason: "must be a finite number"}
		}
	}
	return nil
}

// ValidateWeightSum checks that a weight set is finite, non-negative and sums to 1.0.
func ValidateWeightSum(field string, weights map[BreakdownKey]float64) error {
	sum := 0.0
	for k, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return &ConfigurationError{Field: fmt.Sprintf("%s.%s", field, k), Reason: "must be a finite number"}
		}
		if w < 0 {
			return &ConfigurationError{Field: fmt.Sprintf("%s.%s", field, k), Reason: "must not be negative"}
		}
		sum += w
	}
	if sum < 1-weightSumTolerance || sum > 1+weightSumTolerance {
		return &ConfigurationError{Field: field, Reason: fmt.Sprintf("must sum to 1.0, got %.3f", sum)}
	}
	return nil
}

// validateBounds requires a positive floor: a stage clamped to 0 would zero
// the whole multiplier product.
func validateBounds(field string, b Bounds) error {
	if b.Floor <= 0 {
		return &ConfigurationError{Field: field, Reason: "floor must be positive"}
	}
	if b.Floor > b.Cap {
		return &ConfigurationError{Field: field, Reason: fmt.Sprintf("floor %.3f exceeds cap %.3f", b.Floor, b.Cap)}
	}
	return nil
}
