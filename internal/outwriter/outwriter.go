// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSignals prints signal scores using the configured output format.
func (ow *OutWriter) WriteSignals(results []schema.SignalResult, cfg *contract.Config, duration time.Duration) error {
	return PrintSignalResults(results, cfg, duration)
}

// WriteAuthority prints authority scores using the configured output format.
func (ow *OutWriter) WriteAuthority(scores []schema.AuthorityScore, cfg *contract.Config, duration time.Duration) error {
	return PrintAuthorityResults(scores, cfg, duration)
}

// WriteMindshare prints mindshare snapshots using the configured output format.
func (ow *OutWriter) WriteMindshare(byWindow map[schema.Window][]schema.MindshareSnapshot, cfg *contract.Config, duration time.Duration) error {
	return PrintMindshareResults(byWindow, cfg, duration)
}

// WriteLeaderboards prints arena leaderboards using the configured output format.
func (ow *OutWriter) WriteLeaderboards(boards map[string][]schema.LeaderboardEntry, cfg *contract.Config, duration time.Duration) error {
	return PrintLeaderboards(boards, cfg, duration)
}

// WriteSmartFollowers prints one Smart-Followers report using the configured output format.
func (ow *OutWriter) WriteSmartFollowers(report schema.SmartFollowersReport, cfg *contract.Config) error {
	return PrintSmartFollowers(report, cfg)
}

// WriteBatchReports prints batch run summaries using the configured output format.
func (ow *OutWriter) WriteBatchReports(reports []*schema.BatchReport, cfg *contract.Config) error {
	return PrintBatchReports(reports, cfg)
}

// WriteEngineConfig prints the active engine parameters using the configured output format.
func (ow *OutWriter) WriteEngineConfig(engine schema.EngineConfig, cfg *contract.Config) error {
	return PrintEngineConfig(engine, cfg)
}
