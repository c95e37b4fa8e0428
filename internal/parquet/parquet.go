// Package parquet provides row types and writers for exporting signalboard
// snapshots to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/signalboard/schema"
	"github.com/parquet-go/parquet-go"
)

// BatchRun represents one batch run with its metadata.
// This struct maps to the signalboard_batch_runs database table.
type BatchRun struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// Kind is the batch kind (authority or mindshare)
	Kind string `parquet:"kind,snappy"`

	// SnapshotDate is the YYYY-MM-DD date the run computed
	SnapshotDate string `parquet:"snapshot_date,snappy"`

	// StartedAt is when the run began
	StartedAt time.Time `parquet:"started_at,snappy"`

	// EndedAt is when the run completed (nullable while a run is in progress)
	EndedAt *time.Time `parquet:"ended_at,optional,snappy"`

	UnitsTotal  *int32 `parquet:"units_total,optional,snappy"`
	UnitsFailed *int32 `parquet:"units_failed,optional,snappy"`

	// ConfigParams contains the JSON-encoded run parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// AuthoritySnapshot is one account's authority on a snapshot date.
// This struct maps to the signalboard_authority_snapshots database table.
type AuthoritySnapshot struct {
	AccountID       string  `parquet:"account_id,snappy"`
	SnapshotDate    string  `parquet:"snapshot_date,snappy"`
	AuthorityRaw    float64 `parquet:"authority_raw,snappy"`
	BotRisk         float64 `parquet:"bot_risk,snappy"`
	AuthorityScore  float64 `parquet:"authority_score,snappy"`
	IsSmart         bool    `parquet:"is_smart,snappy"`
	AudienceOrganic float64 `parquet:"audience_organic,snappy"`

	// SmartFollowers is nullable: accounts with no exact or estimated value
	// carry no count at all.
	SmartFollowers         *int32   `parquet:"smart_followers_count,optional,snappy"`
	SmartFollowersPct      *float64 `parquet:"smart_followers_pct,optional,snappy"`
	SmartFollowersEstimate bool     `parquet:"smart_followers_estimate,snappy"`
}

// MindshareSnapshot is one project's share of a window on a snapshot date.
// This struct maps to the signalboard_mindshare_snapshots database table.
type MindshareSnapshot struct {
	ProjectID       string  `parquet:"project_id,snappy"`
	WindowKey       string  `parquet:"window_key,snappy"`
	SnapshotDate    string  `parquet:"snapshot_date,snappy"`
	MindshareBps    int32   `parquet:"mindshare_bps,snappy"`
	DeltaVsPrevious *int32  `parquet:"delta_vs_previous,optional,snappy"`
	Attention       float64 `parquet:"attention,snappy"`
}

// WriteRows writes rows of any tagged struct type to w.
func WriteRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes data into it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteRows(file, data)
}

// WriteBatchRunsParquet writes batch runs to a Parquet file.
func WriteBatchRunsParquet(data []BatchRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteAuthorityParquet writes authority snapshots to a Parquet file.
func WriteAuthorityParquet(data []AuthoritySnapshot, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteMindshareParquet writes mindshare snapshots to a Parquet file.
func WriteMindshareParquet(data []MindshareSnapshot, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertBatchRunRecords converts stored run rows for Parquet export.
func ConvertBatchRunRecords(records []schema.BatchRunRecord) []BatchRun {
	result := make([]BatchRun, len(records))
	for i, record := range records {
		row := BatchRun{
			RunID:        record.RunID,
			Kind:         record.Kind,
			SnapshotDate: record.SnapshotDate,
			StartedAt:    record.StartTime(),
			UnitsTotal:   record.UnitsTotal,
			UnitsFailed:  record.UnitsFailed,
			ConfigParams: record.ConfigParams,
		}
		if record.EndedAt != nil {
			ended := time.UnixMilli(*record.EndedAt).UTC()
			row.EndedAt = &ended
		}
		result[i] = row
	}
	return result
}

// ConvertAuthorityRecords converts stored authority rows for Parquet export.
func ConvertAuthorityRecords(records []schema.AuthorityRecord) []AuthoritySnapshot {
	result := make([]AuthoritySnapshot, len(records))
	for i, record := range records {
		result[i] = AuthoritySnapshot{
			AccountID:              record.AccountID,
			SnapshotDate:           record.SnapshotDate,
			AuthorityRaw:           record.AuthorityRaw,
			BotRisk:                record.BotRisk,
			AuthorityScore:         record.AuthorityScore,
			IsSmart:                record.IsSmart,
			AudienceOrganic:        record.AudienceOrganic,
			SmartFollowers:         int32Ptr(record.SmartFollowers),
			SmartFollowersPct:      record.SmartFollowersPct,
			SmartFollowersEstimate: record.IsEstimate,
		}
	}
	return result
}

// ConvertMindshareRecords converts stored mindshare rows for Parquet export.
func ConvertMindshareRecords(records []schema.MindshareRecord) []MindshareSnapshot {
	result := make([]MindshareSnapshot, len(records))
	for i, record := range records {
		result[i] = MindshareSnapshot{
			ProjectID:       record.ProjectID,
			WindowKey:       record.WindowKey,
			SnapshotDate:    record.SnapshotDate,
			MindshareBps:    int32(record.MindshareBps),
			DeltaVsPrevious: int32Ptr(record.DeltaVsPrevious),
			Attention:       record.Attention,
		}
	}
	return result
}

// FromAuthorityScores converts freshly computed scores without a store round trip.
func FromAuthorityScores(scores []schema.AuthorityScore) []AuthoritySnapshot {
	records := make([]schema.AuthorityRecord, len(scores))
	for i, s := range scores {
		records[i] = s.ToRecord()
	}
	return ConvertAuthorityRecords(records)
}

// FromMindshareSnapshots converts freshly computed snapshots without a store round trip.
func FromMindshareSnapshots(snaps []schema.MindshareSnapshot) []MindshareSnapshot {
	records := make([]schema.MindshareRecord, len(snaps))
	for i, s := range snaps {
		records[i] = s.ToRecord()
	}
	return ConvertMindshareRecords(records)
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
