package schema

import (
	"encoding/json"
	"time"
)

// SignalResult is the quality score for one (account, project, window).
// It is computed on demand and never persisted by the engine.
type SignalResult struct {
	AccountID string                   `json:"account_id"`
	ProjectID string                   `json:"project_id"`
	Window    Window                   `json:"window"`
	Score     float64                  `json:"score"`
	Band      TrustBand                `json:"trust_band"`
	PostCount int                      `json:"post_count"`
	HasData   bool                     `json:"has_data"`
	Breakdown map[BreakdownKey]float64 `json:"breakdown,omitempty"`
}

// SmartFollowers is either an Exact graph count or an Estimate from engagers.
// Consumers distinguish the two with a type switch.
type SmartFollowers interface {
	Count() int
	Pct() float64
	Kind() string
	smartFollowers()
}

// Exact is a Smart-Followers value computed from the follow graph.
type Exact struct {
	N       int
	Percent float64
}

// Estimate is a Smart-Followers value approximated from high-trust engagers.
type Estimate struct {
	N       int
	Percent float64
}

func (e Exact) Count() int      { return e.N }
func (e Exact) Pct() float64    { return e.Percent }
func (e Exact) Kind() string    { return "exact" }
func (e Exact) smartFollowers() {}

func (e Estimate) Count() int      { return e.N }
func (e Estimate) Pct() float64    { return e.Percent }
func (e Estimate) Kind() string    { return "estimate" }
func (e Estimate) smartFollowers() {}

type smartFollowersJSON struct {
	Kind  string  `json:"kind"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// MarshalJSON tags the value so readers can tell exact counts from estimates.
func (e Exact) MarshalJSON() ([]byte, error) {
	return json.Marshal(smartFollowersJSON{Kind: e.Kind(), Count: e.N, Pct: e.Percent})
}

// MarshalJSON tags the value so readers can tell exact counts from estimates.
func (e Estimate) MarshalJSON() ([]byte, error) {
	return json.Marshal(smartFollowersJSON{Kind: e.Kind(), Count: e.N, Pct: e.Percent})
}

// NewSmartFollowers rebuilds a tagged value from its stored parts.
func NewSmartFollowers(count int, pct float64, estimate bool) SmartFollowers {
	if estimate {
		return Estimate{N: count, Percent: pct}
	}
	return Exact{N: count, Percent: pct}
}

// IsEstimate reports whether sf came from the engager fallback.
func IsEstimate(sf SmartFollowers) bool {
	_, ok := sf.(Estimate)
	return ok
}

// AuthorityScore is the graph authority of one account on one snapshot date.
type AuthorityScore struct {
	AccountID       string         `json:"account_id"`
	Date            string         `json:"date"`
	AuthorityRaw    float64        `json:"authority_raw"`
	BotRisk         float64        `json:"bot_risk"`
	Score           float64        `json:"authority_score"` // AuthorityRaw * (1 - BotRisk)
	IsSmart         bool           `json:"is_smart"`
	AudienceOrganic float64        `json:"audience_organic"` // share of graph followers below the bot-risk threshold
	SmartFollowers  SmartFollowers `json:"smart_followers,omitempty"`
}

// SmartFollowersReport is the Smart-Followers value as of a date plus its history deltas.
// Nil deltas mean no prior snapshot exists, which is different from a zero change.
type SmartFollowersReport struct {
	AccountID string         `json:"account_id"`
	AsOf      string         `json:"as_of"`
	Current   SmartFollowers `json:"current"`
	Delta7d   *int           `json:"delta_7d"`
	Delta30d  *int           `json:"delta_30d"`
}

// MindshareSnapshot is one project's share of attention for a window on a date.
type MindshareSnapshot struct {
	ProjectID       string  `json:"project_id"`
	Window          Window  `json:"window"`
	Date            string  `json:"date"`
	Bps             int     `json:"mindshare_bps"`
	DeltaVsPrevious *int    `json:"delta_vs_previous"`
	Attention       float64 `json:"attention"` // quality-adjusted raw attention
}

// LeaderboardEntry is one ranked row of an arena leaderboard.
type LeaderboardEntry struct {
	AccountID     string    `json:"account_id"`
	ArenaID       string    `json:"arena_id"`
	BasePoints    int       `json:"base_points"`
	Multiplier    float64   `json:"multiplier"`
	FinalScore    int       `json:"final_score"`
	Rank          int       `json:"rank"`
	FirstActivity time.Time `json:"first_activity"`
	IsParticipant bool      `json:"is_participant"`
}

// UnitError records a batch unit that failed while others completed.
type UnitError struct {
	Unit string `json:"unit"`
	Err  error  `json:"-"`
}

// Error implements the error interface.
func (u UnitError) Error() string {
	return u.Unit + ": " + u.Err.Error()
}

// Unwrap exposes the underlying cause.
func (u UnitError) Unwrap() error { return u.Err }

// BatchReport summarizes one batch invocation.
type BatchReport struct {
	RunID    string        `json:"run_id"`
	Kind     string        `json:"kind"`
	Date     string        `json:"date"`
	Units    int           `json:"units"`
	Failed   []UnitError   `json:"failed,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether every unit succeeded.
func (r *BatchReport) OK() bool {
	return len(r.Failed) == 0
}
