package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/signalboard/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultTimeout     = 10 * time.Minute
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for signalboard.
// This struct is the "final, validated" config.
type Config struct {
	DataPath string

	// Date is the snapshot date. Now is the instant windows end at.
	Date string
	Now  time.Time

	Window      schema.Window
	Windows     []schema.Window
	AccountID   string
	ProjectID   string
	ArenaID     string
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Persist     bool // write computed snapshots to the store
	Timeout     time.Duration

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string

	ListenAddr string

	Engine schema.EngineConfig
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Data              string `mapstructure:"data"`
	Date              string `mapstructure:"date"`
	Window            string `mapstructure:"window"`
	Windows           string `mapstructure:"windows"`
	Limit             int    `mapstructure:"limit"`
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	Timeout           string `mapstructure:"timeout"`
	SnapshotBackend   string `mapstructure:"snapshot-backend"`
	SnapshotDBConnect string `mapstructure:"snapshot-db-connect"`
	LogLevel          string `mapstructure:"log-level"`
	LogFormat         string `mapstructure:"log-format"`

	// --- Fields from subcommand flags ---
	Account string `mapstructure:"account"`
	Project string `mapstructure:"project"`
	Arena   string `mapstructure:"arena"`
	Persist bool   `mapstructure:"persist"`
	Listen  string `mapstructure:"listen"`

	// --- Engine overrides from config file ---
	Engine EngineRawInput `mapstructure:"engine"`
}

// BoundsRaw is an optional floor/cap override.
type BoundsRaw struct {
	Floor *float64 `mapstructure:"floor"`
	Cap   *float64 `mapstructure:"cap"`
}

// SignalRaw holds optional signal score overrides.
type SignalRaw struct {
	SaturationK     *float64   `mapstructure:"saturation_k"`
	DuplicateFactor *float64   `mapstructure:"duplicate_factor"`
	SentimentGain   *float64   `mapstructure:"sentiment_gain"`
	Sentiment       *BoundsRaw `mapstructure:"sentiment"`
	Authenticity    *BoundsRaw `mapstructure:"authenticity"`
	SmartBonus      *float64   `mapstructure:"smart_bonus"`
	BandA           *float64   `mapstructure:"band_a"`
	BandB           *float64   `mapstructure:"band_b"`
	BandC           *float64   `mapstructure:"band_c"`
}

// AuthorityRaw holds optional graph authority overrides.
type AuthorityRaw struct {
	Damping              *float64 `mapstructure:"damping"`
	Tolerance            *float64 `mapstructure:"tolerance"`
	MaxIterations        *int     `mapstructure:"max_iterations"`
	SmartTopN            *int     `mapstructure:"smart_top_n"`
	SmartTopPercent      *float64 `mapstructure:"smart_top_percent"`
	BotRiskThreshold     *float64 `mapstructure:"bot_risk_threshold"`
	BotRiskCap           *float64 `mapstructure:"bot_risk_cap"`
	NewAccountDays       *int     `mapstructure:"new_account_days"`
	FollowRatioThreshold *float64 `mapstructure:"follow_ratio_threshold"`
	AgeRiskWeight        *float64 `mapstructure:"age_risk_weight"`
	RatioRiskWeight      *float64 `mapstructure:"ratio_risk_weight"`
	EstimateBands        []string `mapstructure:"estimate_bands"`
	DeltaToleranceDays   *int     `mapstructure:"delta_tolerance_days"`
}

// MindshareWeightsRaw holds the custom attention component weights.
// Use float64 pointers for optional fields.
type MindshareWeightsRaw struct {
	Posts    *float64 `mapstructure:"posts"`
	Creators *float64 `mapstructure:"creators"`
	Volume   *float64 `mapstructure:"volume"`
	Heat     *float64 `mapstructure:"heat"`
}

// MindshareRaw holds optional mindshare overrides.
type MindshareRaw struct {
	Weights        *MindshareWeightsRaw `mapstructure:"weights"`
	CreatorAuth    *BoundsRaw           `mapstructure:"creator_auth"`
	AudienceAuth   *BoundsRaw           `mapstructure:"audience_auth"`
	Originality    *BoundsRaw           `mapstructure:"originality"`
	SentimentGain  *float64             `mapstructure:"sentiment_gain"`
	Sentiment      *BoundsRaw           `mapstructure:"sentiment"`
	SmartBoostGain *float64             `mapstructure:"smart_boost_gain"`
	SmartBoost     *BoundsRaw           `mapstructure:"smart_boost"`
}

// EngineRawInput holds all engine overrides from the YAML config file.
type EngineRawInput struct {
	HalfLives          map[string]string  `mapstructure:"half_lives"`
	ContentWeights     map[string]float64 `mapstructure:"content_weights"`
	Signal             *SignalRaw         `mapstructure:"signal"`
	Authority          *AuthorityRaw      `mapstructure:"authority"`
	Mindshare          *MindshareRaw      `mapstructure:"mindshare"`
	VerifiedMultiplier *float64           `mapstructure:"verified_multiplier"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Windows != nil {
		clone.Windows = make([]schema.Window, len(c.Windows))
		copy(clone.Windows, c.Windows)
	}
	clone.Engine = c.Engine.Clone()
	return &clone
}

// CloneWithDate creates a copy of the Config for another snapshot date.
func (c *Config) CloneWithDate(date string, now time.Time) *Config {
	clone := c.Clone()
	clone.Date = date
	clone.Now = now
	return clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDate(cfg, input, time.Now().UTC()); err != nil {
		return err
	}
	if err := processWindows(cfg, input); err != nil {
		return err
	}
	engine, err := ProcessEngineRawInput(input.Engine)
	if err != nil {
		return err
	}
	cfg.Engine = engine
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("snapshot-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("snapshot-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackend parses and validates a backend name with its connection string.
func ValidateBackend(backendStr, connStr string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(backendStr))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", err
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all non-date related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.DataPath = strings.TrimSpace(input.Data)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.AccountID = strings.TrimSpace(input.Account)
	cfg.ProjectID = strings.TrimSpace(input.Project)
	cfg.ArenaID = strings.TrimSpace(input.Arena)
	cfg.Persist = input.Persist
	cfg.ListenAddr = input.Listen
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = input.LogFormat

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 4. Timeout ---
	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := ParseLookbackDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Timeout = timeout
	}

	// --- 5. Backend Validation ---
	backend, err := ValidateBackend(input.SnapshotBackend, input.SnapshotDBConnect)
	if err != nil {
		return err
	}
	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	return nil
}

// processDate resolves the snapshot date and the instant windows end at.
func processDate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	date, at, err := ParseSnapshotDate(input.Date, now)
	if err != nil {
		return err
	}
	cfg.Date = date
	cfg.Now = at
	return nil
}

// processWindows handles the single window and the window list.
func processWindows(cfg *Config, input *ConfigRawInput) error {
	cfg.Window = schema.Window7d
	if input.Window != "" {
		w, err := ParseWindow(input.Window)
		if err != nil {
			return err
		}
		cfg.Window = w
	}

	cfg.Windows = slices.Clone(schema.AllWindows)
	if strings.TrimSpace(input.Windows) != "" {
		windows, err := ParseWindows(input.Windows)
		if err != nil {
			return err
		}
		cfg.Windows = windows
	}
	return nil
}

// ParseWindow validates a single window name.
func ParseWindow(s string) (schema.Window, error) {
	w := schema.Window(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidWindows[w]; !ok {
		return "", fmt.Errorf("invalid window '%s'. must be 24h, 7d, 30d", s)
	}
	return w, nil
}

// ParseWindows parses a comma-separated window list, dropping repeats.
func ParseWindows(s string) ([]schema.Window, error) {
	var out []schema.Window
	seen := make(map[schema.Window]bool)
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		w, err := ParseWindow(part)
		if err != nil {
			return nil, err
		}
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no windows given")
	}
	return out, nil
}

// ProcessEngineRawInput applies the config file overrides to the default
// engine configuration and validates the result.
func ProcessEngineRawInput(raw EngineRawInput) (schema.EngineConfig, error) {
	cfg := schema.DefaultEngineConfig()

	for k, v := range raw.HalfLives {
		w, err := ParseWindow(k)
		if err != nil {
			return cfg, fmt.Errorf("engine.half_lives: %w", err)
		}
		d, err := ParseLookbackDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("engine.half_lives.%s: %w", k, err)
		}
		cfg.Decay.HalfLives[w] = d
	}
	for k, v := range raw.ContentWeights {
		cfg.Decay.ContentWeights[schema.ContentType(strings.ToLower(k))] = v
	}

	if s := raw.Signal; s != nil {
		setFloat(&cfg.Signal.SaturationK, s.SaturationK)
		setFloat(&cfg.Signal.DuplicateFactor, s.DuplicateFactor)
		setFloat(&cfg.Signal.SentimentGain, s.SentimentGain)
		setBounds(&cfg.Signal.Sentiment, s.Sentiment)
		setBounds(&cfg.Signal.Authenticity, s.Authenticity)
		setFloat(&cfg.Signal.SmartBonus, s.SmartBonus)
		setFloat(&cfg.Signal.BandA, s.BandA)
		setFloat(&cfg.Signal.BandB, s.BandB)
		setFloat(&cfg.Signal.BandC, s.BandC)
	}

	if a := raw.Authority; a != nil {
		setFloat(&cfg.Authority.Damping, a.Damping)
		setFloat(&cfg.Authority.Tolerance, a.Tolerance)
		setInt(&cfg.Authority.MaxIterations, a.MaxIterations)
		setInt(&cfg.Authority.SmartTopN, a.SmartTopN)
		setFloat(&cfg.Authority.SmartTopPercent, a.SmartTopPercent)
		setFloat(&cfg.Authority.BotRiskThreshold, a.BotRiskThreshold)
		setFloat(&cfg.Authority.BotRiskCap, a.BotRiskCap)
		setInt(&cfg.Authority.NewAccountDays, a.NewAccountDays)
		setFloat(&cfg.Authority.FollowRatioThreshold, a.FollowRatioThreshold)
		setFloat(&cfg.Authority.AgeRiskWeight, a.AgeRiskWeight)
		setFloat(&cfg.Authority.RatioRiskWeight, a.RatioRiskWeight)
		setInt(&cfg.Authority.DeltaToleranceDays, a.DeltaToleranceDays)
		if len(a.EstimateBands) > 0 {
			bands := make([]schema.TrustBand, 0, len(a.EstimateBands))
			for _, b := range a.EstimateBands {
				bands = append(bands, schema.TrustBand(strings.ToUpper(strings.TrimSpace(b))))
			}
			cfg.Authority.EstimateBands = bands
		}
	}

	if m := raw.Mindshare; m != nil {
		if w := m.Weights; w != nil {
			weights, err := processMindshareWeights(w)
			if err != nil {
				return cfg, err
			}
			cfg.Mindshare.Weights = weights
		}
		setBounds(&cfg.Mindshare.CreatorAuth, m.CreatorAuth)
		setBounds(&cfg.Mindshare.AudienceAuth, m.AudienceAuth)
		setBounds(&cfg.Mindshare.Originality, m.Originality)
		setFloat(&cfg.Mindshare.SentimentGain, m.SentimentGain)
		setBounds(&cfg.Mindshare.Sentiment, m.Sentiment)
		setFloat(&cfg.Mindshare.SmartBoostGain, m.SmartBoostGain)
		setBounds(&cfg.Mindshare.SmartBoost, m.SmartBoost)
	}

	setFloat(&cfg.Leaderboard.VerifiedMultiplier, raw.VerifiedMultiplier)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// processMindshareWeights replaces the attention weights. A partial set
// keeps the defaults for the missing components; the final set must sum to 1.0.
func processMindshareWeights(raw *MindshareWeightsRaw) (map[schema.BreakdownKey]float64, error) {
	weights := schema.GetDefaultAttentionWeights()
	if raw.Posts != nil {
		weights[schema.BreakdownPosts] = *raw.Posts
	}
	if raw.Creators != nil {
		weights[schema.BreakdownCreators] = *raw.Creators
	}
	if raw.Volume != nil {
		weights[schema.BreakdownVolume] = *raw.Volume
	}
	if raw.Heat != nil {
		weights[schema.BreakdownHeat] = *raw.Heat
	}
	if err := schema.ValidateWeightSum("engine.mindshare.weights", weights); err != nil {
		return nil, err
	}
	return weights, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBounds(dst *schema.Bounds, v *BoundsRaw) {
	if v == nil {
		return
	}
	setFloat(&dst.Floor, v.Floor)
	setFloat(&dst.Cap, v.Cap)
}
