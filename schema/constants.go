package schema

import "time"

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in scoring breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshot storage.
	DatabaseBackend string

	// ContentType classifies a post for weighting.
	ContentType string

	// TrustBand is the coarse A-D grade derived from a signal score.
	TrustBand string

	// ApprovalState is the lifecycle state of an arena participant.
	ApprovalState string

	// Window is a rolling time window for mindshare and signal scoring.
	Window string
)

// Breakdown keys used in the scoring logic.
const (
	BreakdownEngagement   BreakdownKey = "engagement"
	BreakdownDuplicate    BreakdownKey = "duplicate"
	BreakdownSentiment    BreakdownKey = "sentiment"
	BreakdownAuthenticity BreakdownKey = "authenticity"

	BreakdownPosts    BreakdownKey = "posts"
	BreakdownCreators BreakdownKey = "creators"
	BreakdownVolume   BreakdownKey = "volume" // total engagement
	BreakdownHeat     BreakdownKey = "heat"

	BreakdownCreatorAuth  BreakdownKey = "creator_auth"
	BreakdownAudienceAuth BreakdownKey = "audience_auth"
	BreakdownOriginality  BreakdownKey = "originality"
	BreakdownSmartBoost   BreakdownKey = "smart_boost"
)

// All content types supported.
const (
	ThreadContent      ContentType = "thread"
	AnalysisContent    ContentType = "analysis"
	MemeContent        ContentType = "meme"
	QuoteRepostContent ContentType = "quote-repost"
	RepostContent      ContentType = "repost"
	ReplyContent       ContentType = "reply"
)

// All trust bands, best first.
const (
	BandA TrustBand = "A"
	BandB TrustBand = "B"
	BandC TrustBand = "C"
	BandD TrustBand = "D"
)

// All participant states.
const (
	InvitedState  ApprovalState = "invited"
	PendingState  ApprovalState = "pending"
	ApprovedState ApprovalState = "approved"
	RejectedState ApprovalState = "rejected"
)

// All scoring windows supported.
const (
	Window24h Window = "24h"
	Window7d  Window = "7d" // default
	Window30d Window = "30d"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All snapshot backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// SnapshotDateFormat is the layout of snapshot dates in storage and on the CLI.
const SnapshotDateFormat = "2006-01-02"

// AllWindows returns every supported window, shortest first.
var AllWindows = []Window{Window24h, Window7d, Window30d}

// AllTrustBands lists the valid trust bands, best first.
var AllTrustBands = []TrustBand{BandA, BandB, BandC, BandD}

// AllContentTypes lists the known content types.
var AllContentTypes = []ContentType{
	ThreadContent, AnalysisContent, MemeContent, QuoteRepostContent, RepostContent, ReplyContent,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidWindows lists all valid scoring windows.
var ValidWindows = map[Window]struct{}{
	Window24h: {},
	Window7d:  {},
	Window30d: {},
}

// ValidDatabaseBackends lists all valid snapshot backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	switch w {
	case Window24h:
		return 24 * time.Hour
	case Window30d:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// GetDefaultContentWeights returns the default content-type weight table.
// Long-form threads and analysis weigh most, bare reposts least.
func GetDefaultContentWeights() map[ContentType]float64 {
	return map[ContentType]float64{
		ThreadContent:      1.5,
		AnalysisContent:    1.5,
		QuoteRepostContent: 1.0,
		MemeContent:        0.8,
		ReplyContent:       0.6,
		RepostContent:      0.3,
	}
}

// GetDefaultHalfLives returns the default recency half-life per window.
func GetDefaultHalfLives() map[Window]time.Duration {
	return map[Window]time.Duration{
		Window24h: 6 * time.Hour,
		Window7d:  48 * time.Hour,
		Window30d: 240 * time.Hour,
	}
}

// GetDefaultAttentionWeights returns the default mindshare component weights.
func GetDefaultAttentionWeights() map[BreakdownKey]float64 {
	return map[BreakdownKey]float64{
		BreakdownPosts:    0.25,
		BreakdownCreators: 0.15,
		BreakdownVolume:   0.45,
		BreakdownHeat:     0.15,
	}
}
