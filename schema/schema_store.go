package schema

import "time"

// BatchRunRecord represents a row from the batch runs table.
type BatchRunRecord struct {
	RunID        string  `db:"run_id"`
	Kind         string  `db:"kind"`
	SnapshotDate string  `db:"snapshot_date"`
	StartedAt    int64   `db:"started_at"` // unix millis
	EndedAt      *int64  `db:"ended_at"`
	UnitsTotal   *int32  `db:"units_total"`
	UnitsFailed  *int32  `db:"units_failed"`
	ConfigParams *string `db:"config_params"`
}

// StartTime converts the stored start timestamp.
func (r BatchRunRecord) StartTime() time.Time {
	return time.UnixMilli(r.StartedAt).UTC()
}

// AuthorityRecord represents a row from the authority snapshots table.
type AuthorityRecord struct {
	AccountID         string   `db:"account_id"`
	SnapshotDate      string   `db:"snapshot_date"`
	AuthorityRaw      float64  `db:"authority_raw"`
	BotRisk           float64  `db:"bot_risk"`
	AuthorityScore    float64  `db:"authority_score"`
	IsSmart           bool     `db:"is_smart"`
	AudienceOrganic   float64  `db:"audience_organic"`
	SmartFollowers    *int     `db:"smart_followers_count"` // NULL when no value was computed
	SmartFollowersPct *float64 `db:"smart_followers_pct"`
	IsEstimate        bool     `db:"smart_followers_estimate"`
}

// MindshareRecord represents a row from the mindshare snapshots table.
type MindshareRecord struct {
	ProjectID       string  `db:"project_id"`
	WindowKey       string  `db:"window_key"`
	SnapshotDate    string  `db:"snapshot_date"`
	MindshareBps    int     `db:"mindshare_bps"`
	DeltaVsPrevious *int    `db:"delta_vs_previous"`
	Attention       float64 `db:"attention"`
}

// SnapshotStatus summarizes the contents of the snapshot store.
type SnapshotStatus struct {
	Backend        string
	Connected      bool
	TotalRuns      int64
	LastRunID      string
	LastRunTime    time.Time
	LatestSnapshot string
	TableSizes     map[string]int64
}

// ToRecord flattens an AuthorityScore for storage.
func (a AuthorityScore) ToRecord() AuthorityRecord {
	rec := AuthorityRecord{
		AccountID:       a.AccountID,
		SnapshotDate:    a.Date,
		AuthorityRaw:    a.AuthorityRaw,
		BotRisk:         a.BotRisk,
		AuthorityScore:  a.Score,
		IsSmart:         a.IsSmart,
		AudienceOrganic: a.AudienceOrganic,
	}
	if a.SmartFollowers != nil {
		count, pct := a.SmartFollowers.Count(), a.SmartFollowers.Pct()
		rec.SmartFollowers = &count
		rec.SmartFollowersPct = &pct
		rec.IsEstimate = IsEstimate(a.SmartFollowers)
	}
	return rec
}

// ToAuthorityScore rebuilds the domain value from a stored row.
func (r AuthorityRecord) ToAuthorityScore() AuthorityScore {
	score := AuthorityScore{
		AccountID:       r.AccountID,
		Date:            r.SnapshotDate,
		AuthorityRaw:    r.AuthorityRaw,
		BotRisk:         r.BotRisk,
		Score:           r.AuthorityScore,
		IsSmart:         r.IsSmart,
		AudienceOrganic: r.AudienceOrganic,
	}
	if r.SmartFollowers != nil {
		pct := 0.0
		if r.SmartFollowersPct != nil {
			pct = *r.SmartFollowersPct
		}
		score.SmartFollowers = NewSmartFollowers(*r.SmartFollowers, pct, r.IsEstimate)
	}
	return score
}

// ToRecord flattens a MindshareSnapshot for storage.
func (m MindshareSnapshot) ToRecord() MindshareRecord {
	return MindshareRecord{
		ProjectID:       m.ProjectID,
		WindowKey:       string(m.Window),
		SnapshotDate:    m.Date,
		MindshareBps:    m.Bps,
		DeltaVsPrevious: m.DeltaVsPrevious,
		Attention:       m.Attention,
	}
}

// ToSnapshot rebuilds the domain value from a stored row.
func (r MindshareRecord) ToSnapshot() MindshareSnapshot {
	return MindshareSnapshot{
		ProjectID:       r.ProjectID,
		Window:          Window(r.WindowKey),
		Date:            r.SnapshotDate,
		Bps:             r.MindshareBps,
		DeltaVsPrevious: r.DeltaVsPrevious,
		Attention:       r.Attention,
	}
}

// SnapshotExport holds every stored row for export.
type SnapshotExport struct {
	Runs      []BatchRunRecord
	Authority []AuthorityRecord
	Mindshare []MindshareRecord
}
