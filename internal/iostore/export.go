package iostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/parquet"
)

// ExecuteSnapshotExport exports every stored run and snapshot to Parquet
// files named outputFile plus a per-table suffix.
func ExecuteSnapshotExport(ctx context.Context, store contract.SnapshotStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("snapshot store is not initialized")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get snapshot status: %w", err)
	}
	if status.TotalRuns == 0 && status.TableSizes[authorityTable] == 0 && status.TableSizes[mindshareTable] == 0 {
		return errors.New("no snapshot data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total batch runs: %d\n", status.TotalRuns)

	data, err := store.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read snapshots: %w", err)
	}

	runsFile := outputFile + ".batch_runs.parquet"
	runs := parquet.ConvertBatchRunRecords(data.Runs)
	if err := parquet.WriteBatchRunsParquet(runs, runsFile); err != nil {
		return fmt.Errorf("failed to write batch runs: %w", err)
	}
	fmt.Printf("Exported %d batch runs to: %s\n", len(runs), runsFile)

	authorityFile := outputFile + ".authority_snapshots.parquet"
	authority := parquet.ConvertAuthorityRecords(data.Authority)
	if err := parquet.WriteAuthorityParquet(authority, authorityFile); err != nil {
		return fmt.Errorf("failed to write authority snapshots: %w", err)
	}
	fmt.Printf("Exported %d authority snapshots to: %s\n", len(authority), authorityFile)

	mindshareFile := outputFile + ".mindshare_snapshots.parquet"
	mindshare := parquet.ConvertMindshareRecords(data.Mindshare)
	if err := parquet.WriteMindshareParquet(mindshare, mindshareFile); err != nil {
		return fmt.Errorf("failed to write mindshare snapshots: %w", err)
	}
	fmt.Printf("Exported %d mindshare snapshots to: %s\n", len(mindshare), mindshareFile)

	return nil
}
