package cmd

import (
	"fmt"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/iostore"
	"github.com/huangsam/signalboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotBackendFromViper reads and validates the backend settings without
// the full config pipeline, so no dataset or date is needed.
func snapshotBackendFromViper() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend, err := contract.ValidateBackend(viper.GetString("snapshot-backend"), viper.GetString("snapshot-db-connect"))
	if err != nil {
		return "", "", err
	}
	return backend, viper.GetString("snapshot-db-connect"), nil
}

// snapshotSetup loads minimal configuration needed for snapshot operations.
func snapshotSetup() error {
	backend, connStr, err := snapshotBackendFromViper()
	if err != nil {
		return err
	}

	if err := iostore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// snapshotMigrateSetup resolves the backend without opening the store or
// creating tables, so migrations can run against a fresh database.
func snapshotMigrateSetup() error {
	backend, connStr, err := snapshotBackendFromViper()
	if err != nil {
		return err
	}

	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iostore.GetDBFilePath()
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	return nil
}

// snapshotMigrateSetupWrapper wraps snapshotMigrateSetup to provide PreRunE for migrate.
func snapshotMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotMigrateSetup()
}

// snapshotsCmd focused on snapshot store management.
//
// Note: snapshot subcommands skip sharedSetup. They need the backend settings
// only, not a dataset or a snapshot date.
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage stored authority and mindshare snapshots",
	Long: `Manage the snapshot store written by --persist runs and batch jobs.

The store keeps:
- Batch run metadata (kind, date, duration, unit counts)
- Authority snapshots per account and date
- Mindshare snapshots per project, window and date

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  export  - Export data to Parquet for analytics
  migrate - Run database schema migrations
  clear   - Remove all stored snapshots

Examples:
  # Check store status
  signalboard snapshots status

  # Export for analysis in pandas/DuckDB
  signalboard snapshots export --output-file snapshots`,
}

// snapshotsStatusCmd shows snapshot store status.
var snapshotsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot store statistics and connection details",
	Long: `Show backend, run counts, last and oldest run times and table sizes.

Examples:
  signalboard snapshots status
  SIGNALBOARD_SNAPSHOT_BACKEND=postgresql signalboard snapshots status`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetSnapshotStore()
		if store == nil {
			contract.LogFatal("Failed to get snapshot status", fmt.Errorf("snapshot store is not initialized"))
		}
		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		iostore.PrintSnapshotStatus(status)
	},
}

// snapshotsExportCmd exports stored snapshots to Parquet files.
var snapshotsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored snapshots to Parquet for BI tools and analytics",
	Long: `Export every stored batch run and snapshot to Parquet.

Writes three files next to --output-file:
  <output-file>.batch_runs.parquet
  <output-file>.authority.parquet
  <output-file>.mindshare.parquet

Requires: --output-file parameter

Examples:
  signalboard snapshots export --output-file snapshots
  duckdb -c "SELECT * FROM read_parquet('snapshots.mindshare.parquet') LIMIT 10"`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteSnapshotExport(rootCtx, storeManager.GetSnapshotStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export snapshots", err)
		}
	},
}

// snapshotsMigrateCmd runs database migrations for the snapshot store.
var snapshotsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  signalboard snapshots migrate

  # Migrate to specific version
  signalboard snapshots migrate --target-version 1

  # Rollback to the initial state
  signalboard snapshots migrate --target-version 0`,
	PreRunE: snapshotMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		result, err := iostore.MigrateSnapshots(cfg.SnapshotBackend, cfg.SnapshotDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(result)
	},
}

// snapshotsClearCmd clears the snapshot store.
var snapshotsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored snapshots",
	Long: `Delete all batch runs and snapshots from the configured backend.

For SQLite the database file (--snapshot-db-connect, or ~/.signalboard.db)
is removed. For MySQL and PostgreSQL the snapshot tables and the migration
history are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  signalboard snapshots export --output-file backup
  signalboard snapshots clear`,
	PreRunE: snapshotMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := ""
		if cfg.SnapshotBackend == schema.SQLiteBackend {
			dbFilePath = cfg.SnapshotDBConnect
		}
		if err := iostore.ClearSnapshots(cfg.SnapshotBackend, dbFilePath, cfg.SnapshotDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshots", err)
		}
		fmt.Println("Snapshots cleared successfully.")
	},
}
