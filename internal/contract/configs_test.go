package contract

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/signalboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Limit:           10,
		Workers:         4,
		Precision:       1,
		Output:          "text",
		Color:           "yes",
		SnapshotBackend: "sqlite",
		Date:            "2026-03-01",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid window", mutate: func(in *ConfigRawInput) { in.Window = "90d" }, expectError: true},
		{name: "invalid windows list", mutate: func(in *ConfigRawInput) { in.Windows = "24h,1y" }, expectError: true},
		{name: "zero limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: true},
		{name: "limit too large", mutate: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: true},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "bad precision", mutate: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: true},
		{name: "bad output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet output", mutate: func(in *ConfigRawInput) { in.Output = "PARQUET" }},
		{name: "bad color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "bad backend", mutate: func(in *ConfigRawInput) { in.SnapshotBackend = "oracle" }, expectError: true},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.SnapshotBackend = "mysql" }, expectError: true},
		{name: "bad date", mutate: func(in *ConfigRawInput) { in.Date = "yesterday-ish" }, expectError: true},
		{name: "relative date", mutate: func(in *ConfigRawInput) { in.Date = "3 days ago" }},
		{name: "bad timeout", mutate: func(in *ConfigRawInput) { in.Timeout = "soon" }, expectError: true},
		{name: "human timeout", mutate: func(in *ConfigRawInput) { in.Timeout = "2 hours" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cfg.Date)
			assert.NoError(t, cfg.Engine.Validate())
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, "2026-03-01", cfg.Date)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), cfg.Now)
	assert.Equal(t, schema.Window7d, cfg.Window)
	assert.Equal(t, schema.AllWindows, cfg.Windows)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, schema.SQLiteBackend, cfg.SnapshotBackend)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.DefaultEngineConfig(), cfg.Engine)
}

func TestProcessAndValidate_Windows(t *testing.T) {
	input := validInput()
	input.Window = "30D"
	input.Windows = "24h, 7d,24h"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.Window30d, cfg.Window)
	assert.Equal(t, []schema.Window{schema.Window24h, schema.Window7d}, cfg.Windows)
}

func TestProcessEngineRawInput(t *testing.T) {
	k := 25.0
	iters := 50
	floor := 0.4
	mult := 2.0
	ageWeight := 0.8
	raw := EngineRawInput{
		HalfLives:          map[string]string{"24h": "12h", "30d": "5 days"},
		ContentWeights:     map[string]float64{"Thread": 2.0},
		Signal:             &SignalRaw{SaturationK: &k, Sentiment: &BoundsRaw{Floor: &floor}},
		Authority:          &AuthorityRaw{MaxIterations: &iters, AgeRiskWeight: &ageWeight, EstimateBands: []string{"a"}},
		VerifiedMultiplier: &mult,
	}
	cfg, err := ProcessEngineRawInput(raw)
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.Decay.HalfLives[schema.Window24h])
	assert.Equal(t, 120*time.Hour, cfg.Decay.HalfLives[schema.Window30d])
	assert.Equal(t, 48*time.Hour, cfg.Decay.HalfLives[schema.Window7d])
	assert.Equal(t, 2.0, cfg.Decay.ContentWeights[schema.ThreadContent])
	assert.Equal(t, 25.0, cfg.Signal.SaturationK)
	assert.Equal(t, 0.4, cfg.Signal.Sentiment.Floor)
	assert.Equal(t, 1.2, cfg.Signal.Sentiment.Cap)
	assert.Equal(t, 50, cfg.Authority.MaxIterations)
	assert.Equal(t, []schema.TrustBand{schema.BandA}, cfg.Authority.EstimateBands)
	assert.Equal(t, 0.8, cfg.Authority.AgeRiskWeight)
	assert.Equal(t, 0.5, cfg.Authority.RatioRiskWeight)
	assert.Equal(t, 2.0, cfg.Leaderboard.VerifiedMultiplier)
}

func TestProcessEngineRawInput_Errors(t *testing.T) {
	heavy := 0.9
	tests := []struct {
		name  string
		raw   EngineRawInput
		field string
	}{
		{
			name:  "weights do not sum to one",
			raw:   EngineRawInput{Mindshare: &MindshareRaw{Weights: &MindshareWeightsRaw{Posts: &heavy}}},
			field: "engine.mindshare.weights",
		},
		{
			name:  "inverted bounds",
			raw:   EngineRawInput{Mindshare: &MindshareRaw{Originality: &BoundsRaw{Floor: &heavy, Cap: new(float64)}}},
			field: "mindshare.originality",
		},
		{
			name:  "unknown estimate band",
			raw:   EngineRawInput{Authority: &AuthorityRaw{EstimateBands: []string{"a", "e"}}},
			field: "authority.estimate_bands",
		},
		{
			name:  "zero content weight",
			raw:   EngineRawInput{ContentWeights: map[string]float64{"repost": 0}},
			field: "decay.content_weights.repost",
		},
		{
			name:  "negative ratio risk weight",
			raw:   EngineRawInput{Authority: &AuthorityRaw{RatioRiskWeight: &[]float64{-1}[0]}},
			field: "authority.risk_weights",
		},
		{
			name:  "bad band order",
			raw:   EngineRawInput{Signal: &SignalRaw{BandC: &[]float64{95}[0]}},
			field: "signal.bands",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProcessEngineRawInput(tt.raw)
			var cfgErr *schema.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	_, err := ProcessEngineRawInput(EngineRawInput{HalfLives: map[string]string{"1y": "1h"}})
	assert.Error(t, err)
	_, err = ProcessEngineRawInput(EngineRawInput{HalfLives: map[string]string{"7d": "never"}})
	assert.Error(t, err)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/signalboard", false},
		{schema.MySQLBackend, "user:pass@localhost/signalboard", true},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{schema.PostgreSQLBackend, "host=localhost user=u dbname=signalboard", false},
		{schema.PostgreSQLBackend, "user=u dbname=signalboard", true},
		{schema.PostgreSQLBackend, "host=localhost user=u", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend)+"/"+tt.conn, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Windows: []schema.Window{schema.Window24h}, Engine: schema.DefaultEngineConfig()}
	clone := cfg.CloneWithDate("2026-01-01", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	clone.Windows[0] = schema.Window30d
	clone.Engine.Mindshare.Weights[schema.BreakdownHeat] = 0

	assert.Equal(t, schema.Window24h, cfg.Windows[0])
	assert.Equal(t, 0.15, cfg.Engine.Mindshare.Weights[schema.BreakdownHeat])
	assert.Equal(t, "2026-01-01", clone.Date)
	assert.Empty(t, cfg.Date)
}

func TestProcessProfilingConfig(t *testing.T) {
	var p ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&p, ""))
	assert.False(t, p.Enabled)
	require.NoError(t, ProcessProfilingConfig(&p, "prof"))
	assert.True(t, p.Enabled)
	assert.Equal(t, "prof", p.Prefix)
}
